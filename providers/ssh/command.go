package ssh

import (
	"fmt"
	"strings"

	"github.com/rigrun/rigrun"
	"golang.org/x/crypto/ssh"
)

// buildEnvPrefix turns KEY=VALUE pairs into an "export KEY='VALUE';" prefix.
// OpenSSH defaults PermitUserEnvironment=no, so session.Setenv would be
// rejected by the device's sshd.
func buildEnvPrefix(envVars []string) string {
	var b strings.Builder

	for _, env := range envVars {
		k, v, found := strings.Cut(env, "=")
		if !found {
			continue
		}

		escaped := strings.ReplaceAll(v, "'", "'\\''")
		fmt.Fprintf(&b, "export %s='%s'; ", k, escaped)
	}

	return b.String()
}

// buildDirPrefix produces a "cd 'dir' &&" prefix when a working directory is
// requested.
func buildDirPrefix(dir string) string {
	if dir == "" {
		return ""
	}

	escaped := strings.ReplaceAll(dir, "'", "'\\''")

	return fmt.Sprintf("cd '%s' && ", escaped)
}

// terminalModes returns the PTY modes for the execution step.
func terminalModes() ssh.TerminalModes {
	return ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
}

// buildFullCommand composes the remote command line: environment prefix,
// directory change, then the quoted command itself.
func buildFullCommand(cmd *rigrun.Command) string {
	return buildEnvPrefix(cmd.Env) + buildDirPrefix(cmd.Dir) + cmd.String()
}
