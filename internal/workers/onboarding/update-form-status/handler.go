// internal/workers/onboarding/update-form-status/handler.go
package updateformstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"onboarding-workers/internal/common/database"
	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/common/validation"
	"onboarding-workers/internal/models"
	"onboarding-workers/internal/onboarding"
)

const (
	TaskType = "update-form-status"
)

var schema = validation.MustCompileJSON(inputSchema)

type Handler struct {
	config       *Config
	db           *sql.DB
	cache        *database.RedisClient
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler builds the handler. cache may be nil when snapshot caching is off.
func NewHandler(config *Config, db *sql.DB, cache *database.RedisClient, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		cache:        cache,
		logger:       scoped,
		errorHandler: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.decode([]byte(job.Variables))
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) decode(variables []byte) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(variables, &raw); err != nil {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	if result := schema.Validate(raw); !result.Valid {
		return nil, apperrors.NewInputValidationFailedError(result.Summary()).
			WithMetadata("validationErrors", result.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

// formState is the locked row state a transition is decided on.
type formState struct {
	appStatus      string
	completedForms []string
	form           *onboarding.FormRecord
	rawData        []byte
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	key := onboarding.BackendKey(input.FormKey)
	if _, ok := onboarding.Lookup(key); !ok {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("unknown form %q", input.FormKey))
	}
	action := onboarding.Action(input.Action)
	now := time.Now().UTC()

	var (
		previous  onboarding.FormStatus
		next      onboarding.FormStatus
		state     *formState
		completed []string
	)

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var err error
		state, err = loadState(ctx, tx, input.ApplicationID, key)
		if err != nil {
			return err
		}

		previous = onboarding.StatusNone
		if state.form != nil {
			previous, _ = onboarding.ParseStatus(state.form.Status)
		}

		next, err = onboarding.Transition(state.form, action, state.appStatus)
		if err != nil {
			return transitionError(key, err)
		}

		data := state.rawData
		if !action.IsReviewerAction() && input.Data != nil {
			if data, err = json.Marshal(input.Data); err != nil {
				return apperrors.NewInputValidationFailedError(fmt.Sprintf("encode form data: %v", err))
			}
		}
		if len(data) == 0 {
			data = []byte("{}")
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO onboarding_forms (application_id, form_key, status, data, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (application_id, form_key)
			DO UPDATE SET status = EXCLUDED.status, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
			input.ApplicationID, key, string(next), data, now,
		); err != nil {
			return apperrors.NewDatabaseUpdateFailedError(err)
		}

		completed = updateCompleted(state.completedForms, key, action)
		if !equalKeys(completed, state.completedForms) {
			encoded, err := json.Marshal(completed)
			if err != nil {
				return apperrors.NewDatabaseUpdateFailedError(err)
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE onboarding_applications
				SET completed_forms = $2, updated_at = $3
				WHERE id = $1`,
				input.ApplicationID, encoded, now,
			); err != nil {
				return apperrors.NewDatabaseUpdateFailedError(err)
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, database.QueryError(ctx, "update_form_status", err)
	}

	metrics.FormTransitions.WithLabelValues(string(action), string(next)).Inc()
	auditID := h.writeAudit(ctx, input, key, previous, next, now)
	h.invalidateSnapshot(ctx, input.ApplicationID)

	h.logger.Info("form status updated", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"formKey":        key,
		"action":         input.Action,
		"previousStatus": string(previous),
		"status":         string(next),
	})

	return &Output{
		ApplicationID:  input.ApplicationID,
		FormKey:        key,
		FormID:         onboarding.FormID(key),
		Action:         input.Action,
		PreviousStatus: string(previous),
		Status:         string(next),
		IsEditable:     onboarding.IsEditable(&onboarding.FormRecord{Status: string(next)}, state.appStatus),
		CompletedForms: completed,
		AuditID:        auditID,
		UpdatedAt:      now.Format(time.RFC3339),
	}, nil
}

func loadState(ctx context.Context, tx *sql.Tx, applicationID, key string) (*formState, error) {
	var (
		appStatus sql.NullString
		completed []byte
	)
	err := tx.QueryRowContext(ctx, `
		SELECT status, completed_forms
		FROM onboarding_applications
		WHERE id = $1
		FOR UPDATE`, applicationID).Scan(&appStatus, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return nil, database.QueryError(ctx, "lock_onboarding_application", err)
	}

	state := &formState{appStatus: appStatus.String, completedForms: []string{}}
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &state.completedForms); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("lock_onboarding_application", err)
		}
	}

	var status sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT status, data
		FROM onboarding_forms
		WHERE application_id = $1 AND form_key = $2`, applicationID, key).Scan(&status, &state.rawData)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return state, nil
	case err != nil:
		return nil, database.QueryError(ctx, "load_onboarding_form", err)
	}

	form := &onboarding.FormRecord{Status: status.String}
	if len(state.rawData) > 0 {
		if err := json.Unmarshal(state.rawData, form); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("load_onboarding_form", err)
		}
		// the column is authoritative for status
		form.Status = status.String
	}
	state.form = form
	return state, nil
}

func transitionError(key string, err error) error {
	if errors.Is(err, onboarding.ErrFormLocked) {
		return apperrors.NewFormNotEditableError(key, err)
	}
	return apperrors.NewInvalidStatusTransitionError(key, err)
}

// updateCompleted keeps the override set in step with HR decisions: an
// approval adds the form and a rejection takes it back out.
func updateCompleted(current []string, key string, action onboarding.Action) []string {
	out := make([]string, 0, len(current)+1)
	present := false
	for _, k := range current {
		if onboarding.BackendKey(k) == key {
			present = true
			if action == onboarding.ActionReject {
				continue
			}
		}
		out = append(out, k)
	}
	if action == onboarding.ActionApprove && !present {
		out = append(out, key)
	}
	return out
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// writeAudit is best effort: the transition is already committed.
func (h *Handler) writeAudit(ctx context.Context, input *Input, key string, previous, next onboarding.FormStatus, at time.Time) string {
	entry := models.AuditEntry{
		ID:           uuid.New().String(),
		EventType:    "form_status_changed",
		ResourceType: "onboarding_application",
		ResourceID:   input.ApplicationID,
		Details: map[string]interface{}{
			"formKey":        key,
			"action":         input.Action,
			"previousStatus": string(previous),
			"status":         string(next),
			"actorId":        input.ActorID,
			"comment":        input.Comment,
		},
		CreatedAt: at,
	}

	details, err := json.Marshal(entry.Details)
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID,
		entry.EventType,
		entry.ResourceType,
		entry.ResourceID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": input.ApplicationID,
		})
	}
	return entry.ID
}

func (h *Handler) invalidateSnapshot(ctx context.Context, applicationID string) {
	if h.cache == nil {
		return
	}
	err := h.cache.Bump(ctx, database.SnapshotVersionKey(applicationID), database.SnapshotCacheKey(applicationID))
	if err != nil {
		h.logger.Warn("snapshot cache invalidation failed", map[string]interface{}{
			"applicationId": applicationID,
			"error":         err.Error(),
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.RecordCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.RecordFailed(TaskType, string(apperrors.Normalize(err).Code))
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Decode is exported for tests.
func (h *Handler) Decode(variables []byte) (*Input, error) {
	return h.decode(variables)
}
