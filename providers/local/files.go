package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rigrun/rigrun"
	"github.com/rigrun/rigrun/fileutil"
)

// Upload copies a local file to another local path. Parent directories are
// created as needed.
func (e *Environment) Upload(ctx context.Context, localPath, remotePath string, opts ...rigrun.FileOption) error {
	return e.copyFile(ctx, localPath, remotePath, opts...)
}

// Download copies a file from the environment to a local path. For the local
// provider this mirrors Upload.
func (e *Environment) Download(ctx context.Context, remotePath, localPath string, opts ...rigrun.FileOption) error {
	return e.copyFile(ctx, remotePath, localPath, opts...)
}

func (e *Environment) copyFile(ctx context.Context, src, dst string, opts ...rigrun.FileOption) error {
	cfg := rigrun.FileConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = srcFile.Close() }()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	mode := info.Mode()
	if cfg.Permissions != 0 {
		mode = cfg.Permissions
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	defer func() { _ = dstFile.Close() }()

	// Mode on OpenFile is subject to umask; enforce the requested mode.
	if err := os.Chmod(dst, mode); err != nil {
		return fmt.Errorf("failed to chmod %q: %w", dst, err)
	}

	if _, err := fileutil.Copy(ctx, dstFile, srcFile, info.Size(), cfg); err != nil {
		return err
	}

	if err := dstFile.Sync(); err != nil {
		return err
	}

	return dstFile.Close()
}
