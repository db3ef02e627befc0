package rigrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  *Command
		want string
	}{
		{
			name: "no args",
			cmd:  NewCommand("uname"),
			want: "uname",
		},
		{
			name: "plain args",
			cmd:  NewCommand("gzip", "-d", "-f", "/tmp/test.gz"),
			want: "gzip -d -f /tmp/test.gz",
		},
		{
			name: "arg with spaces is quoted",
			cmd:  NewCommand("echo", "hello world"),
			want: "echo 'hello world'",
		},
		{
			name: "embedded single quote",
			cmd:  NewCommand("echo", "it's"),
			want: `echo 'it'\''s'`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "''", Quote(""))
	assert.Equal(t, "/tmp/artifact-1.2", Quote("/tmp/artifact-1.2"))
	assert.Equal(t, "'a b'", Quote("a b"))
	assert.Equal(t, "'$(reboot)'", Quote("$(reboot)"))
}

func TestScript(t *testing.T) {
	t.Parallel()

	cmd := Script("rm -f /tmp/x ; lock -u /tmp/testrunner")
	assert.Equal(t, "sh", cmd.Cmd)
	require.Len(t, cmd.Args, 2)
	assert.Equal(t, "-c", cmd.Args[0])
	assert.Equal(t, "rm -f /tmp/x ; lock -u /tmp/testrunner", cmd.Args[1])
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	cmd, err := ParseCommand(`strip --strip-all "my file"`)
	require.NoError(t, err)
	assert.Equal(t, "strip", cmd.Cmd)
	assert.Equal(t, []string{"--strip-all", "my file"}, cmd.Args)

	_, err = ParseCommand("")
	require.Error(t, err)
}

func TestCommandValidate(t *testing.T) {
	t.Parallel()

	var nilCmd *Command

	require.Error(t, nilCmd.Validate())
	require.Error(t, (&Command{Cmd: "  "}).Validate())
	require.NoError(t, NewCommand("true").Validate())
}

func TestResultSuccess(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Result{}).Success())
	assert.True(t, (&Result{ExitCode: 1}).Failed())
	assert.True(t, (&Result{Error: ErrNotSupported}).Failed())
}
