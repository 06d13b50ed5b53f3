package model

import "fmt"

// ValidationError reports caller-supplied input the core refuses to act on,
// such as partitioning an empty rider set. It is returned to the caller and
// never silently resolved.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError rejects an operation whose preconditions no longer hold,
// for example shrinking below one group or resizing after an external
// mutation changed the attendee sets. No partial mutation occurs.
type StateConflictError struct {
	Op     string
	Reason string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
