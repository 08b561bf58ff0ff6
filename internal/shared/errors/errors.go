package errors

import (
	"errors"
	"fmt"
)

// ErrorType is the category an error is reported under
type ErrorType string

const (
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeConflict         ErrorType = "conflict"
	ErrorTypeUnauthorized     ErrorType = "unauthorized"
	ErrorTypeForbidden        ErrorType = "forbidden"
	ErrorTypeInternal         ErrorType = "internal"
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"
	ErrorTypeExternal         ErrorType = "external"

	// ErrorTypeConstraint marks a write rejected by the schema, typically a
	// parent or endpoint that no longer exists when the row is inserted.
	ErrorTypeConstraint ErrorType = "constraint_violation"

	// ErrorTypeTransactionConflict marks lock contention or a serialization
	// failure. Nothing was committed and the operation may be retried whole.
	ErrorTypeTransactionConflict ErrorType = "transaction_conflict"
)

// AppError carries a type through wrapping so the HTTP layer can map it
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, message string) error {
	return &AppError{Type: t, Message: message}
}

func wrap(t ErrorType, message string, err error) error {
	return &AppError{Type: t, Message: message, Err: err}
}

func NotFoundf(format string, args ...interface{}) error {
	return newError(ErrorTypeNotFound, fmt.Sprintf(format, args...))
}

func Validation(message string) error {
	return newError(ErrorTypeValidation, message)
}

func Validationf(format string, args ...interface{}) error {
	return newError(ErrorTypeValidation, fmt.Sprintf(format, args...))
}

// WrapValidation reports a malformed request body or parameter
func WrapValidation(message string, err error) error {
	return wrap(ErrorTypeValidation, message, err)
}

func WrapConstraint(message string, err error) error {
	return wrap(ErrorTypeConstraint, message, err)
}

func WrapTransactionConflict(message string, err error) error {
	return wrap(ErrorTypeTransactionConflict, message, err)
}

func WrapInternal(message string, err error) error {
	return wrap(ErrorTypeInternal, message, err)
}

func Unauthorized(message string) error {
	return newError(ErrorTypeUnauthorized, message)
}

func Forbidden(message string) error {
	return newError(ErrorTypeForbidden, message)
}

func MethodNotAllowed(method string) error {
	return newError(ErrorTypeMethodNotAllowed, fmt.Sprintf("method %s not allowed", method))
}

// Wrap adds context to err while keeping the type of the innermost AppError
func Wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	return wrap(GetType(err), message, err)
}

// GetType returns the type of the outermost AppError in the chain, or
// ErrorTypeInternal for untyped errors
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

func IsType(err error, errorType ErrorType) bool {
	return err != nil && GetType(err) == errorType
}

func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsRetryable reports whether the whole operation may be retried from scratch
func IsRetryable(err error) bool {
	return IsType(err, ErrorTypeTransactionConflict)
}
