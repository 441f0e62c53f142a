// Package errors defines the typed error envelope shared by services and handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Planner errors surfaced to the planning screen.
var (
	ErrInvalidTimeFormat       = New("INVALID_TIME_FORMAT", http.StatusBadRequest, "invalid time format")
	ErrInvalidInterval         = New("INVALID_INTERVAL", http.StatusBadRequest, "invalid interval")
	ErrSlotConflict            = New("SLOT_CONFLICT", http.StatusConflict, "slot already taken this week")
	ErrBudgetExceeded          = New("BUDGET_EXCEEDED", http.StatusConflict, "monthly hour limit exceeded")
	ErrSessionUnavailable      = New("SESSION_UNAVAILABLE", http.StatusUnprocessableEntity, "session cannot be selected")
	ErrConfirmationInProgress  = New("CONFIRMATION_IN_PROGRESS", http.StatusConflict, "confirmation in progress")
	ErrConfirmationUnavailable = New("CONFIRMATION_UNAVAILABLE", http.StatusServiceUnavailable, "confirmation service unavailable, please retry")
)

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	var e *Error
	if target == nil || !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
