//go:build windows

package local

import (
	"os/exec"
	"strconv"
)

// killProcessGroup kills the process tree rooted at pid.
func killProcessGroup(pid int) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}

// setProcessGroup is a no-op on Windows; taskkill /T handles the tree.
func setProcessGroup(_ *exec.Cmd) {}
