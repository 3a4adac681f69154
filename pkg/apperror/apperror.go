package apperror

import (
	"errors"
	"fmt"
)

// Code classifies an application error so handlers can map it to a status.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeInvalidState Code = "INVALID_STATE"
	CodeInternal     Code = "INTERNAL"
)

// AppError carries a code, a client-safe message and an optional cause.
type AppError struct {
	Code    Code
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

// New creates an AppError without a cause.
func New(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to err.
func Wrap(code Code, err error, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound is shorthand for New(CodeNotFound, "<what> not found").
func NotFound(what string) *AppError {
	return &AppError{Code: CodeNotFound, Message: what + " not found"}
}

// CodeOf returns the code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsConflict(err error) bool     { return CodeOf(err) == CodeConflict }
func IsForbidden(err error) bool    { return CodeOf(err) == CodeForbidden }
func IsInvalidState(err error) bool { return CodeOf(err) == CodeInvalidState }
