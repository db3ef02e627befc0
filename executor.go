package rigrun

import (
	"bytes"
	"context"
)

// Executor runs commands on an Environment with optional command-line echo
// and opt-in non-zero-exit escalation. It performs no retries: a failed
// command is reported once to the caller.
type Executor struct {
	env  Environment
	echo func(string)
}

// Option configures an Executor.
type Option func(*Executor)

// WithEcho installs a hook that receives the fully composed command line
// before each execution. Used for verbose mode.
func WithEcho(fn func(string)) Option {
	return func(e *Executor) {
		e.echo = fn
	}
}

// NewExecutor creates an Executor for the given environment.
func NewExecutor(env Environment, opts ...Option) *Executor {
	e := &Executor{env: env}
	for _, o := range opts {
		o(e)
	}

	return e
}

// Run executes a command. With WithCheck a non-zero exit code is returned as
// an *ExitError; otherwise the caller inspects Result.ExitCode.
func (e *Executor) Run(ctx context.Context, cmd *Command, opts ...ExecOption) (*Result, error) {
	cfg := ExecConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	if e.echo != nil {
		e.echo(cmd.String())
	}

	res, err := e.env.Run(ctx, cmd)
	if err != nil {
		return res, err
	}

	if cfg.Check && res != nil && res.ExitCode != 0 {
		return res, &ExitError{Command: cmd, ExitCode: res.ExitCode}
	}

	return res, nil
}

// RunBuffered executes a command and captures both stdout and stderr.
func (e *Executor) RunBuffered(ctx context.Context, cmd *Command, opts ...ExecOption) (*BufferedResult, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	cmdCopy := *cmd // copy so the caller's command is not mutated
	cmdCopy.Stdout = &stdoutBuf
	cmdCopy.Stderr = &stderrBuf

	result, err := e.Run(ctx, &cmdCopy, opts...)

	bufResult := &BufferedResult{
		Stdout: stdoutBuf.Bytes(),
		Stderr: stderrBuf.Bytes(),
	}
	if result != nil {
		bufResult.Result = *result
	}

	if err != nil {
		if exitErr, ok := err.(*ExitError); ok { //nolint:errorlint // created by Run above, never wrapped
			exitErr.Stderr = bufResult.Stderr
		}
	}

	return bufResult, err
}

// RunScript executes a shell line through "sh -c" and captures its output.
func (e *Executor) RunScript(ctx context.Context, line string, opts ...ExecOption) (*BufferedResult, error) {
	return e.RunBuffered(ctx, Script(line), opts...)
}

// Start initiates a command asynchronously. The caller owns the Process.
func (e *Executor) Start(ctx context.Context, cmd *Command) (Process, error) {
	if e.echo != nil {
		e.echo(cmd.String())
	}

	return e.env.Start(ctx, cmd)
}

// Upload delegates to the underlying environment.
func (e *Executor) Upload(ctx context.Context, localPath, remotePath string, opts ...FileOption) error {
	return e.env.Upload(ctx, localPath, remotePath, opts...)
}

// Download delegates to the underlying environment.
func (e *Executor) Download(ctx context.Context, remotePath, localPath string, opts ...FileOption) error {
	return e.env.Download(ctx, remotePath, localPath, opts...)
}
