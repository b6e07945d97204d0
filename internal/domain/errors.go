package domain

import (
	"errors"
	"fmt"
)

// NotFoundError signals a missing resource. It is also returned for
// authorization failures that must not reveal whether the resource exists.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFoundError creates a NotFoundError for a resource identified by id.
func NewNotFoundError(resource string, id any) error {
	return &NotFoundError{Message: fmt.Sprintf("%s with id %v not found", resource, id)}
}

// NewNotFoundMessage creates a NotFoundError with a literal message.
func NewNotFoundMessage(message string) error {
	return &NotFoundError{Message: message}
}

// ValidationError signals a request that violates a business precondition.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError signals a state collision, such as a duplicate unique value
// or a concurrent modification losing an optimistic-lock race.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
