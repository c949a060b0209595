package tasks

import "errors"

var (
	ErrNotFound        = errors.New("task not found")
	ErrInvalidPriority = errors.New("invalid priority level")

	errTrailingData = errors.New("unexpected data after JSON value")
)

// ValidationError is returned when a request payload breaks a field rule.
// Reason is safe to send back to the client verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(reason string) error { return &ValidationError{Reason: reason} }
