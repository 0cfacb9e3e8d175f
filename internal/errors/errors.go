// Package errors carries the application error type used for wiring and
// request validation, and maps every error to an HTTP status.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"safetyhub/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the outermost AppError, or the code matching a
// domain error, or INTERNAL_ERROR.
func GetCode(err error) string {
	var appErr *AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr.Code
	case core.IsDataError(err):
		return CodeInvalidInput
	case core.IsConfigurationError(err):
		return CodeConfigInvalid
	case core.IsExternalServiceError(err):
		return CodeExternalService
	default:
		return CodeInternalError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// HTTPStatus maps an error to a response status. Caller faults (bad data,
// bad settings, failed validation) are 400, unknown resources 404, and
// everything else 500.
func HTTPStatus(err error) int {
	if core.IsDataError(err) || core.IsConfigurationError(err) {
		return http.StatusBadRequest
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case CodeValidationError, CodeInvalidInput, CodeConfigInvalid:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}
