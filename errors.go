package rigrun

import (
	"errors"
	"fmt"
)

// ErrNotSupported indicates that the requested feature (e.g. a PTY) is not
// supported by the provider.
var ErrNotSupported = errors.New("operation not supported")

// ErrEnvironmentClosed indicates an operation on a closed environment.
var ErrEnvironmentClosed = errors.New("environment is closed")

// ExitError reports a command that ran to completion with a non-zero exit
// code. It is only produced when the caller asked for escalation via
// WithCheck; otherwise the exit code travels in Result.
type ExitError struct {
	Command  *Command
	ExitCode int
	Stderr   []byte
	Cause    error
}

func (e *ExitError) Error() string {
	if e.Command == nil {
		return fmt.Sprintf("command exited with code %d", e.ExitCode)
	}

	return fmt.Sprintf("command %q exited with code %d", e.Command.String(), e.ExitCode)
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// TransportError reports a failure in the underlying transport or provider
// layer (connection lost, binary not found, session setup failed). The remote
// process may never have run.
type TransportError struct {
	Command *Command
	Err     error
}

func (e *TransportError) Error() string {
	if e.Command == nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}

	return fmt.Sprintf("transport error executing %q: %v", e.Command.String(), e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
