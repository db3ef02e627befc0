// Package session orchestrates one deploy/execute/cleanup run against the
// device: prepare, lock, transfer, optional remote decompression, execution,
// then guaranteed teardown.
package session

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/rigrun/rigrun"
	"github.com/rigrun/rigrun/internal/artifact"
	"github.com/rigrun/rigrun/internal/config"
	"github.com/rigrun/rigrun/internal/harness"
	"github.com/rigrun/rigrun/internal/hwlock"
	"github.com/rs/zerolog"
)

// ExitNeverRan is the exit code reported when the remote process was never
// executed. 255 matches the ssh client's own convention for "the remote
// command did not run".
const ExitNeverRan = 255

// Plan carries the per-invocation execution options.
type Plan struct {
	ExtraArgs  []string // pass-through arguments for the remote process
	Keep       bool     // leave the artifact on the device after the run
	Compress   bool     // gzip the transfer, decompress on the device
	Preprocess string   // local shell command applied to a scratch copy
}

// Session drives a single run. Create one per invocation; it is not
// reusable.
type Session struct {
	exec   *rigrun.Executor
	prep   *artifact.Preparer
	lock   *hwlock.Coordinator
	target config.Target
	plan   Plan
	log    zerolog.Logger
	state  State

	// Streams attached to the remote execution step. Default to the
	// process's own stdio.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Session running against remote, with local used for artifact
// preparation.
func New(remote, local rigrun.Environment, target config.Target, plan Plan, log zerolog.Logger) *Session {
	exec := rigrun.NewExecutor(remote, rigrun.WithEcho(func(line string) {
		log.Debug().Str("host", target.Host).Msg(line)
	}))

	return &Session{
		exec:   exec,
		prep:   artifact.NewPreparer(local, log),
		lock:   hwlock.New(exec, target.BasePath),
		target: target,
		plan:   plan,
		log:    log,
		state:  StateIdle,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Run executes the full pipeline and returns the exit code to report: the
// remote process's own exit code, or ExitNeverRan when execution was never
// reached. The device lock, once requested, is released exactly once on
// every path, including cancellation.
func (s *Session) Run(ctx context.Context, artifactPath string) (int, error) {
	s.to(StatePreparing)

	prepared, err := s.prep.Prepare(ctx, artifactPath, artifact.Plan{
		Preprocess: s.plan.Preprocess,
		Compress:   s.plan.Compress,
	})
	if err != nil {
		// No remote state exists yet; teardown is a no-op and is skipped.
		return ExitNeverRan, &StepError{State: StatePreparing, Err: err}
	}

	defer func() {
		if err := prepared.Cleanup(); err != nil {
			s.log.Warn().Err(err).Msg("scratch file cleanup failed")
		}
	}()

	exitCode, executed, runErr := s.runLocked(ctx, prepared)

	s.to(StateDone)

	if executed {
		// The remote exit code wins; teardown trouble was already logged.
		return exitCode, nil
	}

	return ExitNeverRan, runErr
}

// runLocked covers everything between lock request and teardown. Teardown is
// bound from the moment the lock is requested and runs exactly once, on a
// cancellation-immune context, even when acquisition itself failed (releasing
// an unheld lock is harmless on the device).
func (s *Session) runLocked(ctx context.Context, prepared *artifact.Prepared) (exitCode int, executed bool, runErr error) {
	remotePath := path.Join(s.target.BasePath, prepared.RemoteName)
	exitCode = ExitNeverRan

	s.to(StateLockPending)

	defer func() {
		s.to(StateTearingDown)

		removePath := remotePath
		if s.plan.Keep {
			removePath = ""
		}

		if err := s.lock.Release(context.WithoutCancel(ctx), removePath); err != nil {
			tearErr := &StepError{State: StateTearingDown, Err: err}
			if executed || runErr != nil {
				// Never mask the captured exit code or the first failure.
				s.log.Error().Err(tearErr).Msg("teardown failed")
			} else {
				runErr = tearErr
			}
		}
	}()

	if err := s.lock.Acquire(ctx); err != nil {
		runErr = &StepError{State: StateLockPending, Err: err}

		return exitCode, false, runErr
	}

	s.to(StateTransferring)

	transferPath := path.Join(s.target.BasePath, prepared.TransferName)

	err := s.exec.Upload(ctx, prepared.LocalPath, transferPath,
		rigrun.WithPermissions(0o755),
		rigrun.WithProgress(func(current, total int64) {
			if current == total {
				s.log.Debug().Int64("bytes", total).Str("remote", transferPath).Msg("transfer complete")
			}
		}))
	if err != nil {
		runErr = &StepError{State: StateTransferring, Err: err}

		return exitCode, false, runErr
	}

	if prepared.Compressed {
		s.to(StateRemoteDecompressing)

		line := "gzip -d -f " + rigrun.Quote(transferPath)
		if _, err := s.exec.Run(ctx, rigrun.Script(line), rigrun.WithCheck()); err != nil {
			runErr = &StepError{State: StateRemoteDecompressing, Err: err}

			return exitCode, false, runErr
		}
	}

	s.to(StateExecuting)

	cmd := &rigrun.Command{
		Cmd:    remotePath,
		Args:   s.remoteArgs(prepared.RemoteName),
		Tty:    true,
		Stdin:  s.Stdin,
		Stdout: s.Stdout,
		Stderr: s.Stderr,
	}

	// Unchecked: a non-zero exit here is the expected outcome of a failing
	// test, not a system fault. The code is captured for propagation.
	res, err := s.exec.Run(ctx, cmd)
	if err != nil {
		runErr = &StepError{State: StateExecuting, Err: err}

		return exitCode, false, runErr
	}

	return res.ExitCode, true, nil
}

// remoteArgs concatenates harness-forced flags with the caller's
// pass-through arguments.
func (s *Session) remoteArgs(remoteName string) []string {
	var args []string

	if harness.IsGeneratedHarness(remoteName) {
		s.log.Debug().Str("artifact", remoteName).Msg("generated harness detected, forcing a single worker thread")

		args = append(args, "--test-threads", "1")
	}

	return append(args, s.plan.ExtraArgs...)
}

func (s *Session) to(state State) {
	s.state = state
	s.log.Debug().Stringer("state", state).Msg("session state")
}
