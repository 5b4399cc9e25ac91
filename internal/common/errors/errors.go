// Package errors provides standardized error handling for the HTTP API and
// the lead intake pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrCodeNotFound         ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeConflict         ErrorCode = "RESOURCE_CONFLICT"

	ErrCodeUnauthenticated   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodePermissionDenied  ErrorCode = "PERMISSION_DENIED"
	ErrCodeInvalidCredential ErrorCode = "INVALID_CREDENTIALS"

	ErrCodeDatabaseQueryFailed  ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeProviderNotConfigured   ErrorCode = "PROVIDER_NOT_CONFIGURED"
	ErrCodeProviderFetchFailed     ErrorCode = "PROVIDER_FETCH_FAILED"
	ErrCodeProviderResponseInvalid ErrorCode = "PROVIDER_RESPONSE_INVALID"
	ErrCodeEntryMalformed          ErrorCode = "ENTRY_MALFORMED"

	ErrCodeSearchFailed           ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeFeatureDisabled ErrorCode = "FEATURE_DISABLED"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
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
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata attaches a key to the error's metadata and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

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

// ==========================
// 2. Error Constructors
// ==========================

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false, nil)
}

func NewInvalidPayloadError(details string) *StandardError {
	return newError(ErrCodeInvalidPayload, "Invalid payload", details, false, nil)
}

func NewResourceNotFoundError(resource, id string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), fmt.Sprintf("id: %s", id), false, nil)
}

func NewConflictError(resource, details string) *StandardError {
	return newError(ErrCodeConflict, fmt.Sprintf("%s already exists", resource), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeUnauthenticated, "Authentication failed", details, false, nil)
}

func NewInvalidCredentialsError() *StandardError {
	return newError(ErrCodeInvalidCredential, "Invalid email or password", "", false, nil)
}

func NewPermissionDeniedError(permissionID string) *StandardError {
	return newError(ErrCodePermissionDenied, "Permission denied", fmt.Sprintf("requires %s", permissionID), false, nil)
}

func NewDatabaseQueryFailedError(op string, err error) *StandardError {
	return newError(ErrCodeDatabaseQueryFailed, "Database query failed", fmt.Sprintf("op: %s, error: %v", op, err), true, err)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", errDetails(err), true, err)
}

func NewProviderNotConfiguredError(details string) *StandardError {
	return newError(ErrCodeProviderNotConfigured, "Lead provider not configured", details, false, nil)
}

func NewProviderFetchFailedError(err error) *StandardError {
	return newError(ErrCodeProviderFetchFailed, "Lead provider fetch failed", errDetails(err), true, err)
}

func NewProviderResponseInvalidError(details string) *StandardError {
	return newError(ErrCodeProviderResponseInvalid, "Lead provider returned an invalid response", details, false, nil)
}

func NewEntryMalformedError(details string) *StandardError {
	return newError(ErrCodeEntryMalformed, "Notification entry malformed", details, false, nil)
}

func NewSearchFailedError(err error) *StandardError {
	return newError(ErrCodeSearchFailed, "Lead search failed", errDetails(err), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %v", channel, err), true, err)
}

func NewFeatureDisabledError(feature string) *StandardError {
	return newError(ErrCodeFeatureDisabled, "Feature disabled", fmt.Sprintf("%s is not enabled", feature), false, nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. HTTP Mapping
// ==========================

var httpStatusByCode = map[ErrorCode]int{
	ErrCodeValidationFailed:        http.StatusBadRequest,
	ErrCodeInvalidPayload:          http.StatusBadRequest,
	ErrCodeEntryMalformed:          http.StatusBadRequest,
	ErrCodeNotFound:                http.StatusNotFound,
	ErrCodeConflict:                http.StatusConflict,
	ErrCodeUnauthenticated:         http.StatusUnauthorized,
	ErrCodeInvalidCredential:       http.StatusUnauthorized,
	ErrCodePermissionDenied:        http.StatusForbidden,
	ErrCodeProviderNotConfigured:   http.StatusServiceUnavailable,
	ErrCodeProviderFetchFailed:     http.StatusBadGateway,
	ErrCodeProviderResponseInvalid: http.StatusBadGateway,
	ErrCodeSearchFailed:            http.StatusBadGateway,
	ErrCodeFeatureDisabled:         http.StatusServiceUnavailable,
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandard normalizes any error into a StandardError.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the error code of err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	return AsStandard(err).Code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROVIDER"), code == ErrCodeEntryMalformed:
		return "INTAKE"
	case strings.HasPrefix(codeStr, "DATABASE"):
		return "DATABASE"
	case code == ErrCodeUnauthenticated, code == ErrCodeInvalidCredential, code == ErrCodePermissionDenied:
		return "AUTH"
	case strings.Contains(codeStr, "VALIDATION"), strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
