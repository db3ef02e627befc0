package local_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rigrun/rigrun"
	"github.com/rigrun/rigrun/providers/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("test relies on a POSIX shell")
	}
}

func TestRunExitCodeIsNotAnError(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	env := local.New()

	res, err := env.Run(context.Background(), rigrun.Script("exit 7"))
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
	assert.True(t, res.Failed())
}

func TestRunCapturesOutput(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	env := local.New()

	var stdout, stderr bytes.Buffer

	cmd := rigrun.Script("echo out; echo err >&2")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res, err := env.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestRunHonorsEnvAndDir(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	env := local.New()
	dir := t.TempDir()

	var stdout bytes.Buffer

	cmd := rigrun.Script("echo $GREETING $(pwd)")
	cmd.Env = []string{"GREETING=hello"}
	cmd.Dir = dir
	cmd.Stdout = &stdout

	_, err := env.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "hello "+dir+"\n", stdout.String())
}

func TestTtyIsNotSupported(t *testing.T) {
	t.Parallel()

	env := local.New()

	cmd := rigrun.NewCommand("true")
	cmd.Tty = true

	_, err := env.Run(context.Background(), cmd)
	require.ErrorIs(t, err, rigrun.ErrNotSupported)
}

func TestRunCancellation(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	env := local.New()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := env.Run(ctx, rigrun.Script("sleep 10"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	transportErr := &rigrun.TransportError{}
	assert.ErrorAs(t, err, &transportErr)
}

func TestClosedEnvironmentRejectsCommands(t *testing.T) {
	t.Parallel()

	env := local.New()
	require.NoError(t, env.Close())

	_, err := env.Run(context.Background(), rigrun.NewCommand("true"))
	require.ErrorIs(t, err, rigrun.ErrEnvironmentClosed)
}

func TestActiveProcessesDrainsToZero(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	env := local.New()

	_, err := env.Run(context.Background(), rigrun.Script("true"))
	require.NoError(t, err)
	assert.Equal(t, 0, env.ActiveProcesses())
}

func TestUploadCopiesWithPermissions(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	env := local.New()
	src := filepath.Join(t.TempDir(), "artifact")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	// Destination parents are created on demand.
	dst := filepath.Join(t.TempDir(), "nested", "dir", "artifact")

	var lastCurrent, lastTotal int64

	err := env.Upload(context.Background(), src, dst,
		rigrun.WithPermissions(0o755),
		rigrun.WithProgress(func(current, total int64) {
			lastCurrent, lastTotal = current, total
		}))
	require.NoError(t, err)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	assert.EqualValues(t, 7, lastTotal)
	assert.Equal(t, lastTotal, lastCurrent)
}

func TestDownloadMirrorsUpload(t *testing.T) {
	t.Parallel()

	env := local.New()
	src := filepath.Join(t.TempDir(), "remote-file")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	dst := filepath.Join(t.TempDir(), "local-file")
	require.NoError(t, env.Download(context.Background(), src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestUploadMissingSource(t *testing.T) {
	t.Parallel()

	env := local.New()

	err := env.Upload(context.Background(), filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "dst"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
