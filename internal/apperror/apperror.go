// Package apperror defines the domain errors shared by every layer.
//
// Each failure class has a sentinel (ErrNotFound, ErrValidation, ...) and a
// constructor returning *AppError. The AppError carries a human-readable
// message and unwraps to its sentinel, so callers branch with errors.Is and
// display with err.Error() without caring which layer produced it.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrIntegrity    = errors.New("referential integrity violation")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel this error unwraps to
	Message string // Human-readable error message
	Field   string // Optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that no row with the given id exists. Update and delete
// return it when zero rows were affected; it is always recoverable.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// IntegrityViolation reports a write that references a parent row which does
// not exist, e.g. an observation for a deleted hike.
func IntegrityViolation(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrIntegrity,
		Message: fmt.Sprintf("%s with id %d does not exist", resource, id),
	}
}

// Unauthorized returns an AppError for a request without a valid API token.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
