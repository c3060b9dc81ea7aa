package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while building or tallying elections.
var (
	// ErrInvalidElection indicates that an Election failed its validity check.
	ErrInvalidElection = errors.New("invalid election")

	// ErrUnknownOption indicates that an option name does not match any
	// tally Option.
	ErrUnknownOption = errors.New("unknown option")

	// ErrScoreOutOfRange indicates that a vote carried a score outside
	// [MinScore, MaxScore].
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrEmptyValue indicates that a required value is empty or nil.
	ErrEmptyValue = errors.New("empty value")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Is reports whether target is ErrInvalidElection for election validation
// failures, so callers can match on the sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidElection && e.Entity == electionEntity
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddErrorf formats and adds a new error message to the validation error.
func (e *ValidationError) AddErrorf(format string, args ...any) {
	e.AddError(fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
