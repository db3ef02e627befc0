// Package hwlock coordinates the device-side exclusive lock gating access to
// the shared hardware. The device's lock utility (OpenWrt busybox "lock")
// blocks until the lock is free and, unlike flock, must be released with an
// explicit "lock -u"; it does not drop when the holding connection dies.
package hwlock

import (
	"context"
	"fmt"

	"github.com/rigrun/rigrun"
)

// LockPath is the well-known lock file every runner on the device agrees on.
// It lives outside the artifact base path so teardown of the base directory
// can never remove it.
const LockPath = "/tmp/testrunner"

// Coordinator acquires and releases the device lock over a transport.
type Coordinator struct {
	exec     *rigrun.Executor
	lockPath string
	basePath string
}

// New creates a Coordinator that locks LockPath and ensures basePath exists.
func New(exec *rigrun.Executor, basePath string) *Coordinator {
	return &Coordinator{
		exec:     exec,
		lockPath: LockPath,
		basePath: basePath,
	}
}

// Acquire takes the device lock and creates the artifact base directory, as
// one remote command. The lock utility blocks until the lock is available, so
// this call can wait indefinitely; callers needing a bound must wrap ctx with
// a timeout.
func (c *Coordinator) Acquire(ctx context.Context) error {
	line := fmt.Sprintf("lock %s && mkdir -p %s", c.lockPath, rigrun.Quote(c.basePath))

	if _, err := c.exec.Run(ctx, rigrun.Script(line), rigrun.WithCheck()); err != nil {
		return fmt.Errorf("acquire device lock: %w", err)
	}

	return nil
}

// Release unlocks the device lock, optionally removing removePath first, as
// one remote command. The two parts are joined with ";", never "&&", so a
// failed removal cannot skip the unlock.
func (c *Coordinator) Release(ctx context.Context, removePath string) error {
	if _, err := c.exec.Run(ctx, rigrun.Script(c.releaseScript(removePath)), rigrun.WithCheck()); err != nil {
		return fmt.Errorf("release device lock: %w", err)
	}

	return nil
}

func (c *Coordinator) releaseScript(removePath string) string {
	if removePath == "" {
		return fmt.Sprintf("lock -u %s", c.lockPath)
	}

	return fmt.Sprintf("rm -f %s ; lock -u %s", rigrun.Quote(removePath), c.lockPath)
}
