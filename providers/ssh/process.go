package ssh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rigrun/rigrun"
	"golang.org/x/crypto/ssh"
)

// Process implements rigrun.Process for a remote SSH command.
type Process struct {
	env     *Environment
	session *ssh.Session
	cmd     *rigrun.Command

	result *rigrun.Result
	mu     sync.RWMutex
	done   chan struct{}
	closed bool
}

func (p *Process) start(ctx context.Context) error {
	p.session.Stdin = p.cmd.Stdin
	p.session.Stdout = p.cmd.Stdout
	p.session.Stderr = p.cmd.Stderr

	if p.cmd.Tty {
		if err := p.session.RequestPty("xterm", 80, 40, terminalModes()); err != nil {
			return &rigrun.TransportError{Command: p.cmd, Err: fmt.Errorf("request for pty failed: %w", err)}
		}
	}

	startTime := time.Now()

	if err := p.session.Start(buildFullCommand(p.cmd)); err != nil {
		return &rigrun.TransportError{Command: p.cmd, Err: err}
	}

	go func() {
		defer close(p.done)
		defer p.env.decrementActive()

		// Monitor cancellation while the remote command runs.
		doneCheck := make(chan struct{})

		go func() {
			select {
			case <-ctx.Done():
				_ = p.Signal(os.Kill)
				_ = p.Close()
			case <-doneCheck:
			}
		}()

		err := p.session.Wait()

		close(doneCheck)

		duration := time.Since(startTime)

		var exitCode int

		// An ExitError is a clean remote exit carrying the status; anything
		// else (ExitMissingError, dropped connection) is a transport failure.
		exitErr := &ssh.ExitError{}

		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitStatus()
			err = nil
		case ctx.Err() != nil:
			err = ctx.Err()
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

// Wait blocks until the remote command completes. Transport failures are
// returned as errors; the exit status travels in Result.
func (p *Process) Wait() error {
	p.mu.RLock()

	if p.closed {
		p.mu.RUnlock()

		return errors.New("process closed")
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

// Result returns the command execution result. Valid after Wait.
func (p *Process) Result() *rigrun.Result {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.result == nil {
		return &rigrun.Result{}
	}

	res := *p.result

	return &res
}

// Signal sends a signal to the remote process. Only INT and KILL map onto
// SSH signals.
func (p *Process) Signal(sig os.Signal) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || p.session == nil {
		return errors.New("process closed or not started")
	}

	var sshSig ssh.Signal

	switch sig {
	case os.Interrupt:
		sshSig = ssh.SIGINT
	case os.Kill:
		sshSig = ssh.SIGKILL
	default:
		return fmt.Errorf("signal %v not supported over ssh", sig)
	}

	return p.session.Signal(sshSig)
}

// Close terminates the SSH session.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	if p.session != nil {
		return p.session.Close()
	}

	return nil
}
