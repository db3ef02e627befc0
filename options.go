package rigrun

import "os"

// ExecConfig holds per-run configuration derived from options.
type ExecConfig struct {
	Check bool
}

// ExecOption is a functional option for a single execution.
type ExecOption func(*ExecConfig)

// WithCheck escalates a non-zero exit code to an *ExitError. Without it the
// caller inspects Result.ExitCode explicitly. The final remote execution step
// runs unchecked so the exit code can be propagated instead of escalated.
func WithCheck() ExecOption {
	return func(c *ExecConfig) {
		c.Check = true
	}
}

// FileConfig holds configuration for file transfers.
type FileConfig struct {
	Permissions os.FileMode // Destination mode override (0 means preserve source mode)
	Progress    ProgressFunc
}

// FileOption is a functional option for file transfers.
type FileOption func(*FileConfig)

// WithPermissions forces a specific destination file mode. The deploy step
// uses this to keep the transferred artifact executable even when a scratch
// copy lost the original mode.
func WithPermissions(mode os.FileMode) FileOption {
	return func(c *FileConfig) {
		c.Permissions = mode
	}
}

// ProgressFunc is a callback for tracking transfer progress.
type ProgressFunc func(current, total int64)

// WithProgress calls fn with progress updates during a transfer.
func WithProgress(fn ProgressFunc) FileOption {
	return func(c *FileConfig) {
		c.Progress = fn
	}
}
