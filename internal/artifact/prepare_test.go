package artifact

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rigrun/rigrun/providers/local"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPreparer() *Preparer {
	return NewPreparer(local.New(), zerolog.Nop())
}

func writeArtifact(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o755))

	return path
}

func TestPrepareNoTransformations(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, "job-0123456789abcdef", []byte("binary"))

	prepared, err := newPreparer().Prepare(context.Background(), path, Plan{})
	require.NoError(t, err)

	assert.Equal(t, path, prepared.LocalPath)
	assert.Equal(t, "job-0123456789abcdef", prepared.RemoteName)
	assert.Equal(t, "job-0123456789abcdef", prepared.TransferName)
	assert.False(t, prepared.Compressed)
	assert.EqualValues(t, 6, prepared.Size)
	require.NoError(t, prepared.Cleanup())
}

func TestPrepareMissingArtifact(t *testing.T) {
	t.Parallel()

	_, err := newPreparer().Prepare(context.Background(), filepath.Join(t.TempDir(), "nope"), Plan{})
	require.Error(t, err)
}

func TestPreprocessNeverMutatesOriginal(t *testing.T) {
	t.Parallel()

	original := []byte("original contents")
	path := writeArtifact(t, "tool", original)

	// Appends a marker to the scratch copy via the placeholder token.
	prepared, err := newPreparer().Prepare(context.Background(), path, Plan{
		Preprocess: "printf patched >> " + PathPlaceholder,
	})
	require.NoError(t, err)

	defer func() { _ = prepared.Cleanup() }()

	assert.NotEqual(t, path, prepared.LocalPath, "must transfer the scratch copy")

	scratch, err := os.ReadFile(prepared.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "original contentspatched", string(scratch))

	untouched, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, untouched)

	// The remote name stays the base name of the user's file.
	assert.Equal(t, "tool", prepared.RemoteName)
}

func TestPreprocessFailureAborts(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, "tool", []byte("x"))

	_, err := newPreparer().Prepare(context.Background(), path, Plan{Preprocess: "exit 3 #"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocess command failed")
}

func TestCleanupRemovesScratchFiles(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, "tool", []byte("x"))

	prepared, err := newPreparer().Prepare(context.Background(), path, Plan{
		Preprocess: "true",
		Compress:   true,
	})
	require.NoError(t, err)

	scratch := prepared.LocalPath
	require.NoError(t, prepared.Cleanup())

	_, err = os.Stat(scratch)
	assert.True(t, os.IsNotExist(err), "scratch file must be removed")

	// The user's artifact survives cleanup.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestCompressKeepsOriginalAndRoundTrips(t *testing.T) {
	t.Parallel()

	content := []byte("some binary payload that compresses")
	path := writeArtifact(t, "job-0123456789abcdef", content)

	prepared, err := newPreparer().Prepare(context.Background(), path, Plan{Compress: true})
	require.NoError(t, err)

	defer func() { _ = prepared.Cleanup() }()

	assert.True(t, prepared.Compressed)
	assert.Equal(t, path+GzipSuffix, prepared.LocalPath)
	assert.Equal(t, "job-0123456789abcdef"+GzipSuffix, prepared.TransferName)
	assert.Equal(t, "job-0123456789abcdef", prepared.RemoteName, "execution name never carries the suffix")

	// Original still present.
	_, err = os.Stat(path)
	require.NoError(t, err)

	// Decompressing yields the original bytes, as the device's gzip -d would.
	f, err := os.Open(prepared.LocalPath)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)

	roundTripped, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, content, roundTripped)
}

func TestBuildPreprocessLine(t *testing.T) {
	t.Parallel()

	// Placeholder branch: every token occurrence is substituted.
	line := buildPreprocessLine("strip {} && file {}", "/tmp/scratch-1")
	assert.Equal(t, "strip /tmp/scratch-1 && file /tmp/scratch-1", line)

	// Append branch: no token means the path becomes the final argument.
	line = buildPreprocessLine("strip --strip-all", "/tmp/scratch 2")
	assert.Equal(t, "strip --strip-all '/tmp/scratch 2'", line)
}
