// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"onboarding-workers/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// New returns an empty registry.
func New() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities:  []Activity{},
	}
}

// Save writes the registry as indented JSON, creating the directory if needed.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the activity bound to a Zeebe task type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Add appends an activity. IDs must be unique.
func (r *ActivityRegistry) Add(activity Activity) error {
	for _, existing := range r.Activities {
		if existing.ID == activity.ID {
			return fmt.Errorf("activity with ID %s already exists", activity.ID)
		}
	}
	r.Activities = append(r.Activities, activity)
	r.touch()
	return nil
}

// Update sets a single scalar field of an activity.
func (r *ActivityRegistry) Update(id, field, value string) error {
	var activity *Activity
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			activity = &r.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	r.touch()
	return nil
}

// Validate checks that activities are complete, unique, and that their
// input and output schemas compile.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q", activity.ID, activity.Timeout)
			}
		}
		for name, schema := range map[string]map[string]interface{}{
			"inputSchema":  activity.InputSchema,
			"outputSchema": activity.OutputSchema,
		} {
			if len(schema) == 0 {
				continue
			}
			if _, err := validation.Compile(schema); err != nil {
				return fmt.Errorf("activity %s has invalid %s: %w", activity.ID, name, err)
			}
		}
	}
	return nil
}

// ValidateInput checks job variables against the activity's input schema.
// Activities without a schema accept anything.
func (a *Activity) ValidateInput(variables map[string]interface{}) (*validation.ValidationResult, error) {
	if len(a.InputSchema) == 0 {
		return &validation.ValidationResult{Valid: true}, nil
	}
	return validation.ValidateInput(variables, a.InputSchema)
}

func (r *ActivityRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}
