package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/rigrun/rigrun"
)

var _ rigrun.Environment = (*Environment)(nil)

// Environment implements rigrun.Environment for the local operating system.
// Safe for concurrent use.
type Environment struct {
	mu     sync.Mutex
	active int
	closed bool
}

// New creates a local environment.
func New() *Environment {
	return &Environment{}
}

// Run executes a command synchronously. A non-zero exit code is reported in
// the Result, not as an error.
func (e *Environment) Run(ctx context.Context, cmd *rigrun.Command) (*rigrun.Result, error) {
	proc, err := e.Start(ctx, cmd)
	if err != nil {
		return nil, err
	}

	defer func() { _ = proc.Close() }()

	if err := proc.Wait(); err != nil {
		return nil, err
	}

	return proc.Result(), nil
}

// Start begins command execution asynchronously. The caller must Wait or
// Close the returned Process.
func (e *Environment) Start(ctx context.Context, cmd *rigrun.Command) (rigrun.Process, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil, fmt.Errorf("cannot start command %q: %w", cmd.String(), rigrun.ErrEnvironmentClosed)
	}

	e.active++
	e.mu.Unlock()

	proc := &Process{env: e, cmd: cmd}

	if err := proc.start(ctx); err != nil {
		e.decrementActive()

		return nil, err
	}

	return proc, nil
}

// ActiveProcesses returns the number of currently running commands.
func (e *Environment) ActiveProcesses() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

// Close marks the environment closed. Running processes are unaffected.
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true

	return nil
}

func (e *Environment) decrementActive() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}
