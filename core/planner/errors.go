package planner

import "fmt"

// PersistenceError wraps a failed repository call. The operation is treated
// as not yet applied: in-memory state stays consistent and the write is
// retried on the next materializer pass or transition attempt.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
