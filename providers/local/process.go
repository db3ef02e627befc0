package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rigrun/rigrun"
)

// Process implements rigrun.Process on top of *exec.Cmd.
type Process struct {
	env     *Environment
	cmd     *rigrun.Command
	execCmd *exec.Cmd

	result *rigrun.Result
	mu     sync.RWMutex
	done   chan struct{}
	closed bool
}

func (p *Process) start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("cannot start process %q: already closed", p.cmd.String())
	}

	if p.cmd.Tty {
		// Preprocess and test helper commands never need a terminal locally.
		return fmt.Errorf("cannot start process %q: %w", p.cmd.String(), rigrun.ErrNotSupported)
	}

	p.execCmd = exec.CommandContext(ctx, p.cmd.Cmd, p.cmd.Args...)

	if p.cmd.Dir != "" {
		p.execCmd.Dir = p.cmd.Dir
	}

	if len(p.cmd.Env) > 0 {
		p.execCmd.Env = append(os.Environ(), p.cmd.Env...)
	}

	// New process group so the whole tree can be killed on Close.
	setProcessGroup(p.execCmd)

	p.execCmd.Stdin = p.cmd.Stdin
	p.execCmd.Stdout = p.cmd.Stdout
	p.execCmd.Stderr = p.cmd.Stderr

	p.done = make(chan struct{})

	startTime := time.Now()

	if err := p.execCmd.Start(); err != nil {
		return &rigrun.TransportError{Command: p.cmd, Err: err}
	}

	go func() {
		defer close(p.done)
		defer p.env.decrementActive()

		err := p.execCmd.Wait()
		duration := time.Since(startTime)

		exitCode := 0
		if p.execCmd.ProcessState != nil {
			exitCode = p.execCmd.ProcessState.ExitCode()
		}

		// A plain exit error carries the code; anything else is a transport
		// failure the caller must see. Cancellation kills the process and
		// surfaces as the context error, not as an exit code.
		exitErr := &exec.ExitError{}
		switch {
		case err != nil && ctx.Err() != nil:
			err = ctx.Err()
		case err != nil && errors.As(err, &exitErr):
			err = nil
		}

		p.mu.Lock()
		p.result = &rigrun.Result{
			ExitCode: exitCode,
			Duration: duration,
			Error:    err,
		}
		p.mu.Unlock()
	}()

	return nil
}

// Wait blocks until the command completes. A non-zero exit code is not an
// error; it is reported via Result.
func (p *Process) Wait() error {
	p.mu.RLock()

	if p.closed {
		p.mu.RUnlock()

		return fmt.Errorf("cannot wait on process %q: already closed", p.cmd.String())
	}

	if p.done == nil {
		p.mu.RUnlock()

		return fmt.Errorf("cannot wait on process %q: not started", p.cmd.String())
	}

	p.mu.RUnlock()

	<-p.done

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.result.Error != nil {
		return &rigrun.TransportError{Command: p.cmd, Err: p.result.Error}
	}

	return nil
}

// Result returns the final execution metadata. Safe to call after Wait.
func (p *Process) Result() *rigrun.Result {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.result == nil {
		return &rigrun.Result{}
	}

	res := *p.result

	return &res
}

// Signal sends an OS signal to the running process.
func (p *Process) Signal(sig os.Signal) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("cannot signal process %q: already closed", p.cmd.String())
	}

	if p.execCmd == nil || p.execCmd.Process == nil {
		return fmt.Errorf("cannot signal process %q: not started", p.cmd.String())
	}

	return p.execCmd.Process.Signal(sig)
}

// Close releases the process, killing its process group if still running.
func (p *Process) Close() error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()

		return nil
	}

	shouldKill := p.execCmd != nil && p.execCmd.Process != nil && p.done != nil
	done := p.done
	p.closed = true
	p.mu.Unlock()

	if shouldKill {
		select {
		case <-done:
			// Already finished.
		default:
			if p.execCmd.Process.Pid > 0 {
				_ = killProcessGroup(p.execCmd.Process.Pid)
			}

			<-done
		}
	}

	return nil
}
