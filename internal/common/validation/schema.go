// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON schema that can be reused across jobs.
type Schema struct {
	schema *gojsonschema.Schema
}

// Compile compiles a schema given as a decoded JSON object.
func Compile(schema map[string]interface{}) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: compiled}, nil
}

// MustCompileJSON compiles a schema literal and panics if it is invalid.
func MustCompileJSON(schemaJSON string) *Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("validation: invalid schema: %v", err))
	}
	return &Schema{schema: compiled}
}

// Validate checks document, any value that marshals to JSON, against the schema.
func (s *Schema) Validate(document interface{}) *ValidationResult {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "UNREADABLE_DOCUMENT",
			}},
		}
	}
	return toResult(result)
}

// ValidateInput validates input against a schema in one step.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	compiled, err := Compile(schema)
	if err != nil {
		return nil, err
	}
	return compiled.Validate(input), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	errors := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errors = append(errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    errorCode(e.Type()),
		})
	}
	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errors,
	}
}

func errorCode(resultType string) string {
	switch resultType {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "additional_property_not_allowed":
		return "EXTRA_FIELD"
	case "string_gte":
		return "MIN_LENGTH_VIOLATION"
	case "string_lte":
		return "MAX_LENGTH_VIOLATION"
	case "pattern":
		return "PATTERN_MISMATCH"
	case "number_gte":
		return "MINIMUM_VIOLATION"
	case "number_lte":
		return "MAXIMUM_VIOLATION"
	default:
		return strings.ToUpper(resultType)
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Summary joins all messages for use in an error detail.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts E.164 numbers, the format SNS requires.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
