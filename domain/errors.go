package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable classification shared by every transport.
type ErrorCode string

const (
	ErrCodeInvalidTaskType ErrorCode = "invalid_task_type"
	ErrCodeInvalidDueAt    ErrorCode = "invalid_due_at"
	ErrCodeNotFound        ErrorCode = "not_found"
	ErrCodeConflict        ErrorCode = "conflict"
	ErrCodeUnauthorized    ErrorCode = "unauthorized"
	ErrCodeInternal        ErrorCode = "internal_error"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinel errors by code and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrInvalidTaskType      = NewError(ErrCodeInvalidTaskType, "invalid_task_type")
	ErrInvalidDueAt         = NewError(ErrCodeInvalidDueAt, "invalid_due_at")
	ErrApplicationNotFound  = NewError(ErrCodeNotFound, "application not found")
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrCompletionInProgress = NewError(ErrCodeConflict, "task completion already in progress")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload       = NewError(ErrCodeInternal, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost domain error in the chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
