package response

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"galaxy-server/internal/shared/errors"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type policy struct {
	status  int
	level   slog.Level
	message string
	// retry is sent as Retry-After, in seconds
	retry string
}

var policies = map[errors.ErrorType]policy{
	errors.ErrorTypeNotFound:            {http.StatusNotFound, slog.LevelDebug, "Resource not found", ""},
	errors.ErrorTypeValidation:          {http.StatusBadRequest, slog.LevelDebug, "Validation error", ""},
	errors.ErrorTypeMethodNotAllowed:    {http.StatusMethodNotAllowed, slog.LevelDebug, "Method not allowed", ""},
	errors.ErrorTypeUnauthorized:        {http.StatusUnauthorized, slog.LevelWarn, "Authorization error", ""},
	errors.ErrorTypeForbidden:           {http.StatusForbidden, slog.LevelWarn, "Authorization error", ""},
	errors.ErrorTypeConflict:            {http.StatusConflict, slog.LevelInfo, "Conflict error", ""},
	errors.ErrorTypeConstraint:          {http.StatusUnprocessableEntity, slog.LevelInfo, "Constraint violated", ""},
	errors.ErrorTypeTransactionConflict: {http.StatusConflict, slog.LevelWarn, "Transaction conflict", "1"},
	errors.ErrorTypeExternal:            {http.StatusServiceUnavailable, slog.LevelError, "External service error", ""},
}

var internalPolicy = policy{http.StatusInternalServerError, slog.LevelError, "Internal server error", ""}

func policyFor(errorType errors.ErrorType) policy {
	if p, ok := policies[errorType]; ok {
		return p
	}
	return internalPolicy
}

// Error logs err and writes it as JSON. Handlers should not log the same
// error again. Messages of internal errors are not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errorType := errors.GetType(err)
	p := policyFor(errorType)

	logger.Log(context.WithoutCancel(r.Context()), p.level, p.message,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"error_type", errorType,
		"status_code", p.status,
		"error", err,
	)

	message := err.Error()
	if p.status == http.StatusInternalServerError {
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	if p.retry != "" {
		w.Header().Set("Retry-After", p.retry)
	}
	w.WriteHeader(p.status)

	// The status line is already out, nothing useful can be done on failure
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   string(errorType),
		Message: message,
		Code:    p.status,
	})
}

// Success writes data as JSON with the given status. A nil data writes no body.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
