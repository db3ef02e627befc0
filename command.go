package rigrun

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/shlex"
)

// Command configures a single process execution.
type Command struct {
	Cmd  string   // Binary name or path to executable
	Args []string // Arguments passed to the binary
	Env  []string // Environment variables in "KEY=VALUE" format
	Dir  string   // Working directory

	// Standard streams. Nil means empty input / discarded output.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Tty requests a pseudo-terminal. The remote test binaries change their
	// buffering and progress output when stdout is not a terminal, so the
	// final execution step sets this.
	Tty bool
}

// NewCommand creates a Command for the given binary and arguments.
func NewCommand(binary string, args ...string) *Command {
	return &Command{Cmd: binary, Args: args}
}

// Script wraps a shell line in "sh -c" so pipelines, redirects and command
// separators are interpreted by the (local or remote) shell.
func Script(line string) *Command {
	return &Command{Cmd: "sh", Args: []string{"-c", line}}
}

// ParseCommand splits a shell command string into a Command using shlex,
// handling quoted arguments.
func ParseCommand(cmdStr string) (*Command, error) {
	parts, err := shlex.Split(cmdStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}

	if len(parts) == 0 {
		return nil, errors.New("empty command")
	}

	return &Command{Cmd: parts[0], Args: parts[1:]}, nil
}

// Validate checks that the command is well-formed.
func (c *Command) Validate() error {
	if c == nil {
		return errors.New("command cannot be nil")
	}

	if strings.TrimSpace(c.Cmd) == "" {
		return errors.New("command binary cannot be empty")
	}

	return nil
}

// String returns a shell-quoted representation of the command line.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Cmd
	}

	var b strings.Builder
	b.WriteString(c.Cmd)

	for _, arg := range c.Args {
		b.WriteString(" ")
		b.WriteString(Quote(arg))
	}

	return b.String()
}

// Quote minimally quotes an argument for POSIX shells. Common safe characters
// stay unquoted; everything else is single-quoted with the standard `'\''`
// escape for embedded single quotes.
func Quote(s string) string {
	if s == "" {
		return "''"
	}

	unsafe := strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		}
		switch r {
		case '-', '_', '.', '/', '@', ':', ',', '+', '=':
			return false
		}
		return true
	})
	if unsafe == -1 {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Result contains metadata about a completed command execution.
type Result struct {
	ExitCode int           // Process exit code (0 indicates success)
	Duration time.Duration // Wall-clock execution time
	Error    error         // Launch/transport error (distinct from a non-zero exit)
}

// Success reports whether the command exited 0 with no transport error.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}

// Failed reports whether the command failed (non-zero exit or transport error).
func (r *Result) Failed() bool {
	return !r.Success()
}

// BufferedResult extends Result with captured stdout/stderr content.
// Returned by Executor.RunBuffered.
type BufferedResult struct {
	Result

	Stdout []byte
	Stderr []byte
}
