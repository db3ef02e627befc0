// Package rigrun defines the execution abstraction used to deploy and run a
// single binary on a shared hardware rig.
//
// # Core Interfaces
//
// - Environment: the system commands run on (the local machine or the remote
// device over SSH).
// - Process: a started command handle (Wait, Signal, Close).
//
// Output is streaming-first: nothing is buffered unless the caller attaches
// writers to the Command, or uses Executor.RunBuffered.
package rigrun

import (
	"context"
	"io"
	"os"
)

// Environment abstracts the system a command runs on. Implementations exist
// for the local machine (providers/local) and a remote device reached over
// SSH (providers/ssh).
type Environment interface {
	io.Closer

	// Run executes a command synchronously. A non-zero exit status is not an
	// error: it is reported through Result.ExitCode so callers can decide
	// whether to escalate (see Executor.Run and WithCheck).
	Run(ctx context.Context, cmd *Command) (*Result, error)

	// Start initiates a command asynchronously. The caller owns the returned
	// Process and must release it via Wait or Close.
	Start(ctx context.Context, cmd *Command) (Process, error)

	// Upload copies a local file to the destination path, creating missing
	// parent directories.
	Upload(ctx context.Context, localPath, remotePath string, opts ...FileOption) error

	// Download copies a file from the environment to the local destination,
	// creating missing parent directories.
	Download(ctx context.Context, remotePath, localPath string, opts ...FileOption) error
}

// Process represents a command that has been started but not yet completed.
type Process interface {
	io.Closer

	// Wait blocks until the process exits. It returns an error only for
	// transport-level failures; the exit status is available via Result.
	Wait() error

	// Result returns exit metadata. Only valid after Wait.
	Result() *Result

	// Signal sends an OS signal to the process. Signal support depends on the
	// underlying provider.
	Signal(sig os.Signal) error
}
