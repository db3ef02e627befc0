package session

import "fmt"

// StepError wraps a failure with the pipeline state it occurred in, so
// callers can tell a lock failure from a transfer or teardown failure.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
