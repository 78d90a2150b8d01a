// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Business errors raised by onboarding workflows
const (
	ErrCodeApplicationNotFound     ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeFormNotEditable         ErrorCode = "FORM_NOT_EDITABLE"
	ErrCodeInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeInputValidationFailed   ErrorCode = "INPUT_VALIDATION_FAILED"
)

// Technical errors
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseUpdateFailed     ErrorCode = "DATABASE_UPDATE_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeIndexOperationFailed ErrorCode = "INDEX_OPERATION_FAILED"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewApplicationNotFoundError creates a non-retryable lookup error.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "Onboarding application not found",
		fmt.Sprintf("applicationId: %s", applicationID), false, nil)
}

// NewFormNotEditableError is raised when an employee edits a form HR holds.
func NewFormNotEditableError(formKey string, err error) *StandardError {
	return newError(ErrCodeFormNotEditable, "Form is locked for review",
		fmt.Sprintf("formKey: %s, error: %v", formKey, err), false, err)
}

func NewInvalidStatusTransitionError(formKey string, err error) *StandardError {
	return newError(ErrCodeInvalidStatusTransition, "Invalid form status transition",
		fmt.Sprintf("formKey: %s, error: %v", formKey, err), false, err)
}

// NewInputValidationFailedError creates a non-retryable input error.
func NewInputValidationFailedError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job input validation failed", details, false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryName string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("query: %s, error: %s", queryName, err.Error()), true, err)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryName string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("query: %s", queryName), true, nil)
}

// NewDatabaseUpdateFailedError creates a retryable write error.
func NewDatabaseUpdateFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseUpdateFailed, "Database update operation failed", err.Error(), true, err)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err.Error(), true, err)
}

func NewIndexOperationFailedError(indexName string, err error) *StandardError {
	return newError(ErrCodeIndexOperationFailed, "Elasticsearch index operation failed",
		fmt.Sprintf("index: %s, error: %s", indexName, err.Error()), true, err)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(indexName string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", indexName, err.Error()), true, err)
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(indexName string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout",
		fmt.Sprintf("index: %s", indexName), true, nil)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled on
// BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeApplicationNotFound:      "APPLICATION_NOT_FOUND",
	ErrCodeFormNotEditable:          "FORM_NOT_EDITABLE",
	ErrCodeInvalidStatusTransition:  "INVALID_STATUS_TRANSITION",
	ErrCodeInputValidationFailed:    "INPUT_VALIDATION_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeDatabaseUpdateFailed:     "DATABASE_UPDATE_FAILED",
	ErrCodeCacheUnavailable:         "CACHE_UNAVAILABLE",
	ErrCodeIndexOperationFailed:     "INDEX_OPERATION_FAILED",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseUpdateFailed,
		ErrCodeIndexOperationFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeCacheUnavailable:
		return 2

	default:
		return 0 // business errors are not retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "APPLICATION") || strings.Contains(codeStr, "FORM") || strings.Contains(codeStr, "TRANSITION"):
		return "ONBOARDING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
