package ssh

import (
	"testing"

	"github.com/rigrun/rigrun"
	"github.com/stretchr/testify/assert"
)

func TestBuildEnvPrefix(t *testing.T) {
	t.Parallel()

	assert.Empty(t, buildEnvPrefix(nil))

	prefix := buildEnvPrefix([]string{"RUST_BACKTRACE=1", "MSG=it's fine", "malformed"})
	assert.Equal(t, "export RUST_BACKTRACE='1'; export MSG='it'\\''s fine'; ", prefix)
}

func TestBuildDirPrefix(t *testing.T) {
	t.Parallel()

	assert.Empty(t, buildDirPrefix(""))
	assert.Equal(t, "cd '/tmp' && ", buildDirPrefix("/tmp"))
	assert.Equal(t, "cd '/tmp/it'\\''s here' && ", buildDirPrefix("/tmp/it's here"))
}

func TestBuildFullCommand(t *testing.T) {
	t.Parallel()

	cmd := rigrun.NewCommand("/tmp/job-0123456789abcdef", "--test-threads", "1")
	assert.Equal(t, "/tmp/job-0123456789abcdef --test-threads 1", buildFullCommand(cmd))

	cmd.Env = []string{"RUST_LOG=debug"}
	cmd.Dir = "/tmp"
	assert.Equal(t,
		"export RUST_LOG='debug'; cd '/tmp' && /tmp/job-0123456789abcdef --test-threads 1",
		buildFullCommand(cmd))
}

func TestBuildFullCommandQuotesArguments(t *testing.T) {
	t.Parallel()

	cmd := rigrun.NewCommand("/tmp/test", "--filter", "power test")
	assert.Equal(t, "/tmp/test --filter 'power test'", buildFullCommand(cmd))
}
