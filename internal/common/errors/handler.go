// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorHandler renders errors as JSON responses and logs server-side failures.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

type errorBody struct {
	Error *StandardError `json:"error"`
}

// WriteError normalizes err and writes it with the mapped status code.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := AsStandard(err)
	status := HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
		"method":        r.Method,
		"path":          r.URL.Path,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
		// internal details stay in the logs
		stdErr = &StandardError{Code: stdErr.Code, Message: stdErr.Message, Retryable: stdErr.Retryable, Timestamp: stdErr.Timestamp}
	} else {
		h.logger.Warn("request rejected", fields)
	}

	WriteJSON(w, status, errorBody{Error: stdErr})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
