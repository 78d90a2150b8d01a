// internal/workers/data-access/load-onboarding-application/queries/application.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"onboarding-workers/internal/onboarding"
)

// LoadSnapshot reads an application row and all of its forms. It returns
// sql.ErrNoRows when the application does not exist.
func LoadSnapshot(ctx context.Context, db *sql.DB, applicationID string) (*onboarding.Snapshot, error) {
	var (
		id             string
		employmentType sql.NullString
		status         sql.NullString
		completedForms []byte
		createdAt      time.Time
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, employment_type, status, completed_forms, created_at
		FROM onboarding_applications
		WHERE id = $1`, applicationID).Scan(
		&id, &employmentType, &status, &completedForms, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	completed := []string{}
	if len(completedForms) > 0 {
		if err := json.Unmarshal(completedForms, &completed); err != nil {
			return nil, fmt.Errorf("decode completed_forms: %w", err)
		}
	}

	forms, err := loadForms(ctx, db, applicationID)
	if err != nil {
		return nil, err
	}

	return &onboarding.Snapshot{
		Application: onboarding.SnapshotApplication{
			ID:             id,
			EmploymentType: employmentType.String,
			Status:         status.String,
			CompletedForms: completed,
			CreatedAt:      createdAt.UTC().Format(time.RFC3339),
		},
		Forms: forms,
	}, nil
}

func loadForms(ctx context.Context, db *sql.DB, applicationID string) (map[string]onboarding.FormRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT form_key, status, data
		FROM onboarding_forms
		WHERE application_id = $1
		ORDER BY form_key`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := make(map[string]onboarding.FormRecord)
	for rows.Next() {
		var (
			key    string
			status sql.NullString
			data   []byte
		)
		if err := rows.Scan(&key, &status, &data); err != nil {
			return nil, err
		}

		fields := map[string]interface{}{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &fields); err != nil {
				return nil, fmt.Errorf("decode form %s: %w", key, err)
			}
			// the column is authoritative for status
			delete(fields, "status")
		}
		forms[key] = onboarding.FormRecord{Status: status.String, Fields: fields}
	}
	return forms, rows.Err()
}
