// internal/onboarding/application.go
package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormRecord is one onboarding sub-form. Status is lifted out of the stored
// payload; every other field is kept as-is in Fields.
type FormRecord struct {
	Status string
	Fields map[string]interface{}
}

// UnmarshalJSON decodes the flat form object stored by the backend.
func (f *FormRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Status = ""
	if s, ok := raw["status"].(string); ok {
		f.Status = s
	}
	delete(raw, "status")
	f.Fields = raw
	return nil
}

// MarshalJSON writes the form back in its flat shape.
func (f FormRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(f.Fields)+1)
	for k, v := range f.Fields {
		out[k] = v
	}
	if f.Status != "" {
		out["status"] = f.Status
	}
	return json.Marshal(out)
}

// PopulatedFields counts payload fields that hold user input.
func (f *FormRecord) PopulatedFields() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, v := range f.Fields {
		if populated(v) {
			n++
		}
	}
	return n
}

func populated(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}

// Application is the onboarding case of one employee, as last fetched.
type Application struct {
	ID             string
	EmploymentType string
	Status         string
	CreatedAt      string
	CompletedForms []string
	Forms          map[string]FormRecord
}

// PositionAppliedFor reads the role selected on the positionType form.
func (a Application) PositionAppliedFor() string {
	form, ok := a.Forms[KeyPositionType]
	if !ok {
		return ""
	}
	switch v := form.Fields[positionField].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Form returns the record stored under a form id or backend key, or nil
// when the employee has not started it.
func (a Application) Form(idOrKey string) *FormRecord {
	form, ok := a.Forms[BackendKey(idOrKey)]
	if !ok {
		return nil
	}
	return &form
}

// IsMarkedComplete reports whether the key is in the completion override set.
func (a Application) IsMarkedComplete(key string) bool {
	key = BackendKey(key)
	for _, k := range a.CompletedForms {
		if BackendKey(k) == key {
			return true
		}
	}
	return false
}

// Snapshot is the "get application" payload the portal backend returns.
type Snapshot struct {
	Application SnapshotApplication   `json:"application"`
	Forms       map[string]FormRecord `json:"forms"`
}

type SnapshotApplication struct {
	ID             string   `json:"id,omitempty"`
	EmploymentType string   `json:"employmentType"`
	Status         string   `json:"status,omitempty"`
	CompletedForms []string `json:"completedForms"`
	CreatedAt      string   `json:"createdAt"`
}

// DecodeSnapshot parses a snapshot payload. Only malformed JSON is an error;
// missing sections decode to an empty application.
func DecodeSnapshot(data []byte) (Application, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Application{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.ToApplication(), nil
}

// ToApplication converts the wire snapshot into the aggregator input.
func (s Snapshot) ToApplication() Application {
	forms := make(map[string]FormRecord, len(s.Forms))
	for key, form := range s.Forms {
		forms[BackendKey(key)] = form
	}
	return Application{
		ID:             s.Application.ID,
		EmploymentType: s.Application.EmploymentType,
		Status:         s.Application.Status,
		CreatedAt:      s.Application.CreatedAt,
		CompletedForms: append([]string(nil), s.Application.CompletedForms...),
		Forms:          forms,
	}
}

// ToSnapshot converts an application back into the wire shape.
func (a Application) ToSnapshot() Snapshot {
	forms := make(map[string]FormRecord, len(a.Forms))
	for key, form := range a.Forms {
		forms[key] = form
	}
	completed := a.CompletedForms
	if completed == nil {
		completed = []string{}
	}
	return Snapshot{
		Application: SnapshotApplication{
			ID:             a.ID,
			EmploymentType: a.EmploymentType,
			Status:         a.Status,
			CompletedForms: completed,
			CreatedAt:      a.CreatedAt,
		},
		Forms: forms,
	}
}
