// internal/workers/onboarding/update-form-status/handler_test.go
package updateformstatus

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"onboarding-workers/internal/common/database"
	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

const applicationID = "8d7e6f5a-1b2c-4d3e-9f80-7a6b5c4d3e2f"

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createTestCache(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return &database.RedisClient{Client: rdb}, mr
}

func expectLock(mock sqlmock.Sqlmock, appStatus interface{}, completed string) {
	mock.ExpectQuery(`SELECT status, completed_forms\s+FROM onboarding_applications\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs(applicationID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "completed_forms"}).AddRow(appStatus, []byte(completed)))
}

func expectForm(mock sqlmock.Sqlmock, formKey string, status interface{}, data string) {
	q := mock.ExpectQuery(`SELECT status, data\s+FROM onboarding_forms`).WithArgs(applicationID, formKey)
	if status == nil && data == "" {
		q.WillReturnError(sql.ErrNoRows)
		return
	}
	q.WillReturnRows(sqlmock.NewRows([]string{"status", "data"}).AddRow(status, []byte(data)))
}

func expectUpsert(mock sqlmock.Sqlmock, formKey, status string) {
	mock.ExpectExec(`INSERT INTO onboarding_forms`).
		WithArgs(applicationID, formKey, status, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectAudit(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(sqlmock.AnyArg(), "form_status_changed", "onboarding_application", applicationID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected a StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SubmitNewForm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache, mr := createTestCache(t)
	require.NoError(t, mr.Set(database.SnapshotCacheKey(applicationID), "{}"))

	mock.ExpectBegin()
	expectLock(mock, "in_progress", `[]`)
	expectForm(mock, "w4Form", nil, "")
	expectUpsert(mock, "w4Form", "submitted")
	mock.ExpectCommit()
	expectAudit(mock)

	handler := NewHandler(createTestConfig(), db, cache, createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "w4-form",
		Action:        "submit",
		Data:          map[string]interface{}{"filingStatus": "single"},
	})
	require.NoError(t, err)

	assert.Equal(t, "w4Form", output.FormKey)
	assert.Equal(t, "w4-form", output.FormID)
	assert.Equal(t, "none", output.PreviousStatus)
	assert.Equal(t, "submitted", output.Status)
	assert.True(t, output.IsEditable)
	assert.Empty(t, output.CompletedForms)
	assert.NotEmpty(t, output.AuditID)
	assert.False(t, mr.Exists(database.SnapshotCacheKey(applicationID)), "snapshot cache must be invalidated")
	version, err := mr.Get(database.SnapshotVersionKey(applicationID))
	require.NoError(t, err)
	assert.Equal(t, "1", version, "in-flight loads must see the application changed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ApproveAddsToCompletedForms(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLock(mock, "under_review", `["personalInformation"]`)
	expectForm(mock, "i9Form", "under_review", `{"documentType":"passport"}`)
	expectUpsert(mock, "i9Form", "approved")
	mock.ExpectExec(`UPDATE onboarding_applications\s+SET completed_forms`).
		WithArgs(applicationID, []byte(`["personalInformation","i9Form"]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectAudit(mock)

	handler := NewHandler(createTestConfig(), db, nil, createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "i9Form",
		Action:        "approve",
		ActorID:       "hr-7",
	})
	require.NoError(t, err)

	assert.Equal(t, "under_review", output.PreviousStatus)
	assert.Equal(t, "approved", output.Status)
	assert.False(t, output.IsEditable)
	assert.Equal(t, []string{"personalInformation", "i9Form"}, output.CompletedForms)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RejectRemovesFromCompletedForms(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLock(mock, nil, `["i9-form","education"]`)
	expectForm(mock, "i9Form", "submitted", `{}`)
	expectUpsert(mock, "i9Form", "rejected")
	mock.ExpectExec(`UPDATE onboarding_applications`).
		WithArgs(applicationID, []byte(`["education"]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectAudit(mock)

	handler := NewHandler(createTestConfig(), db, nil, createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "i9Form",
		Action:        "reject",
		Comment:       "document expired",
	})
	require.NoError(t, err)

	assert.Equal(t, "rejected", output.Status)
	assert.True(t, output.IsEditable)
	assert.Equal(t, []string{"education"}, output.CompletedForms)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ResubmitAfterRejection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLock(mock, "in_progress", `[]`)
	expectForm(mock, "directDeposit", "rejected", `{"routing":"021000021"}`)
	expectUpsert(mock, "directDeposit", "submitted")
	mock.ExpectCommit()
	expectAudit(mock)

	handler := NewHandler(createTestConfig(), db, nil, createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "direct-deposit",
		Action:        "submit",
	})
	require.NoError(t, err)

	assert.Equal(t, "rejected", output.PreviousStatus)
	assert.Equal(t, "submitted", output.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_LockedForm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLock(mock, "in_progress", `[]`)
	expectForm(mock, "codeOfEthics", "approved", `{}`)
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, nil, createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "codeOfEthics",
		Action:        "save_draft",
	})

	assert.Nil(t, output)
	requireCode(t, err, apperrors.ErrCodeFormNotEditable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ApplicationStatusLocksStatusLessForm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLock(mock, "approved", `[]`)
	expectForm(mock, "education", nil, `{"school":"MIT"}`)
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, nil, createTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "education",
		Action:        "submit",
	})

	requireCode(t, err, apperrors.ErrCodeFormNotEditable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLock(mock, "in_progress", `[]`)
	expectForm(mock, "references", "draft", `{}`)
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, nil, createTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "references",
		Action:        "approve",
	})

	requireCode(t, err, apperrors.ErrCodeInvalidStatusTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ApplicationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM onboarding_applications`).
		WithArgs(applicationID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, nil, createTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "education",
		Action:        "submit",
	})

	requireCode(t, err, apperrors.ErrCodeApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnknownForm(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, createTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		ApplicationID: applicationID,
		FormKey:       "passportScan",
		Action:        "submit",
	})

	requireCode(t, err, apperrors.ErrCodeInputValidationFailed)
}

func TestHandler_Decode(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, createTestLogger(t))

	input, err := handler.Decode([]byte(`{"applicationId":"a","formKey":"i9Form","action":"approve","extra":1}`))
	require.NoError(t, err)
	assert.Equal(t, "approve", input.Action)

	for name, variables := range map[string]string{
		"unknown action":  `{"applicationId":"a","formKey":"i9Form","action":"delete"}`,
		"missing form":    `{"applicationId":"a","action":"submit"}`,
		"empty id":        `{"applicationId":"","formKey":"i9Form","action":"submit"}`,
		"data not object": `{"applicationId":"a","formKey":"i9Form","action":"submit","data":"x"}`,
		"malformed":       `{"applicationId":`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := handler.Decode([]byte(variables))
			requireCode(t, err, apperrors.ErrCodeInputValidationFailed)
		})
	}
}

func TestUpdateCompleted(t *testing.T) {
	assert.Equal(t, []string{"a", "i9Form"}, updateCompleted([]string{"a"}, "i9Form", "approve"))
	assert.Equal(t, []string{"i9Form"}, updateCompleted([]string{"i9Form"}, "i9Form", "approve"))
	assert.Equal(t, []string{"a"}, updateCompleted([]string{"i9-form", "a"}, "i9Form", "reject"))
	assert.Equal(t, []string{"a"}, updateCompleted([]string{"a"}, "i9Form", "submit"))
}
