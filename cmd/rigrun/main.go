// Command rigrun deploys a single executable to a remote device over SSH,
// runs it there under the device's exclusive lock, and cleans up afterwards.
// It is meant to be wired up as a cargo-style custom runner for
// cross-compiled test binaries; its exit code is the remote process's own.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// An interrupt cancels the run but teardown still executes: the session
	// releases the device lock on a cancellation-immune context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	exitCode := 0

	root := newRootCmd(&exitCode)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil && exitCode == 0 {
		exitCode = 1
	}

	return exitCode
}
