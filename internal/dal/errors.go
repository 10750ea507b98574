package dal

import "fmt"

// PersistenceError wraps a durable-storage read or write failure. Callers
// match it with errors.As; a failed read is downgraded to an empty store,
// a failed write leaves the mutation in memory only.
type PersistenceError struct {
	Op  string // "load", "save" or "clear"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
