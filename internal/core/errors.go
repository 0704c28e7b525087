package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidThreshold = errors.New("alert threshold must be between 1 and 100")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")

	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrMissingDate        = errors.New("date is required")
	ErrEndBeforeStart     = errors.New("end date must not precede start date")

	// ErrCheckpointBeforeStart guards the lastGenerated >= startDate
	// invariant; a checkpoint earlier than the start would re-cover
	// periods that were never materialized.
	ErrCheckpointBeforeStart = errors.New("checkpoint precedes start date")
)

// ValidationError marks a rejected input value and names the field that
// carried it, so batch callers can report which record failed.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalidField(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}
