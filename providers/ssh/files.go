package ssh

import (
	"context"
	"fmt"
	"os"
	pathpkg "path"
	"path/filepath"

	"github.com/pkg/sftp"
	"github.com/rigrun/rigrun"
	"github.com/rigrun/rigrun/fileutil"
)

// Upload copies a local file to the device over SFTP, creating missing
// parent directories.
func (e *Environment) Upload(ctx context.Context, localPath, remotePath string, opts ...rigrun.FileOption) error {
	cfg := rigrun.FileConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	client, err := e.sftpClient()
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	src, err := os.Open(localPath)
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	mode := info.Mode()
	if cfg.Permissions != 0 {
		mode = cfg.Permissions
	}

	if err := client.MkdirAll(pathpkg.Dir(remotePath)); err != nil {
		return fmt.Errorf("failed to create remote directory %q: %w", pathpkg.Dir(remotePath), err)
	}

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file %q: %w", remotePath, err)
	}

	defer func() { _ = dst.Close() }()

	if err := client.Chmod(remotePath, mode); err != nil {
		return fmt.Errorf("failed to chmod remote file: %w", err)
	}

	if _, err := fileutil.Copy(ctx, dst, src, info.Size(), cfg); err != nil {
		return err
	}

	return dst.Close()
}

// Download copies a file from the device to a local path over SFTP.
func (e *Environment) Download(ctx context.Context, remotePath, localPath string, opts ...rigrun.FileOption) error {
	cfg := rigrun.FileConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	client, err := e.sftpClient()
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	src, err := client.Open(remotePath)
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	mode := info.Mode()
	if cfg.Permissions != 0 {
		mode = cfg.Permissions
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}

	dst, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	defer func() { _ = dst.Close() }()

	if _, err := fileutil.Copy(ctx, dst, src, info.Size(), cfg); err != nil {
		return err
	}

	return dst.Close()
}

func (e *Environment) sftpClient() (*sftp.Client, error) {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil, rigrun.ErrEnvironmentClosed
	}

	client := e.client
	e.mu.Unlock()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}

	return sftpClient, nil
}
