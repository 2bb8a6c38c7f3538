package script

import "fmt"

// StaleHandleError is thrown into JS when a script uses a handle whose
// node has been removed from the document. It is catchable there; the
// embedding pipeline also sees it as a diagnostic.
type StaleHandleError struct {
	Op string
}

func (e *StaleHandleError) Error() string {
	return fmt.Sprintf("stale node handle in %s", e.Op)
}

// ScriptRuntimeError wraps an uncaught script failure: a thrown
// exception, a mutation the coordinator rejected, or a watchdog
// interrupt. It aborts only the task that raised it.
type ScriptRuntimeError struct {
	Script string
	Cause  error
}

func (e *ScriptRuntimeError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Cause)
}

func (e *ScriptRuntimeError) Unwrap() error { return e.Cause }
