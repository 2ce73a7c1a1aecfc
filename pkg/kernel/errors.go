package kernel

import "fmt"

// Error reports a rejected kernel operation, e.g. a malformed profile or
// a non-manifold boolean result. Kernel operations are deterministic, so
// callers must not retry an identical request.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("kernel: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
