// Package artifact prepares the local artifact for transfer: an optional
// preprocess command over a scratch copy, then optional gzip compression.
// All local work happens before any network contact, so a failure here aborts
// the run with no remote state to clean up.
package artifact

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rigrun/rigrun"
	"github.com/rs/zerolog"
)

// PathPlaceholder is the token in a preprocess command that is replaced with
// the scratch copy's path. When absent, the path is appended as the final
// argument instead. The two branches are explicit so the injection behavior
// stays auditable.
const PathPlaceholder = "{}"

// GzipSuffix is appended to the remote name only for the transfer and the
// immediate remote decompression step, never for the final execution path.
const GzipSuffix = ".gz"

// Plan describes the optional local transformations.
type Plan struct {
	Preprocess string // shell command applied to a scratch copy, empty to skip
	Compress   bool   // gzip the transfer
}

// Prepared is the outcome of preparation.
type Prepared struct {
	LocalPath    string // file to upload (scratch copy and/or .gz sibling)
	RemoteName   string // base name created and executed on the device
	TransferName string // name the upload lands under (RemoteName or RemoteName.gz)
	Compressed   bool
	Size         int64 // size of the file to upload, for transfer logging

	temps []string
}

// Cleanup removes scratch files created during preparation. It is
// independent of remote teardown and must run on every exit path.
func (p *Prepared) Cleanup() error {
	var firstErr error

	for _, t := range p.temps {
		if err := os.Remove(t); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	p.temps = nil

	return firstErr
}

// Preparer runs local preparation steps through a local environment.
type Preparer struct {
	exec *rigrun.Executor
	log  zerolog.Logger
}

// NewPreparer creates a Preparer that runs preprocess commands on the given
// local environment.
func NewPreparer(local rigrun.Environment, log zerolog.Logger) *Preparer {
	return &Preparer{
		exec: rigrun.NewExecutor(local, rigrun.WithEcho(func(line string) {
			log.Debug().Str("stage", "prepare").Msg(line)
		})),
		log: log,
	}
}

// Prepare applies the plan to the artifact at path. The user's original file
// is never mutated: a preprocess command operates on a scratch copy. Any
// scratch files are registered on the returned Prepared for Cleanup.
func (p *Preparer) Prepare(ctx context.Context, path string, plan Plan) (*Prepared, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("artifact %q: %w", path, err)
	}

	prepared := &Prepared{
		LocalPath:    path,
		RemoteName:   filepath.Base(path),
		TransferName: filepath.Base(path),
		Size:         info.Size(),
	}

	if plan.Preprocess != "" {
		if err := p.preprocess(ctx, prepared, plan.Preprocess); err != nil {
			_ = prepared.Cleanup()

			return nil, err
		}
	}

	if plan.Compress {
		if err := p.compress(prepared); err != nil {
			_ = prepared.Cleanup()

			return nil, err
		}
	}

	return prepared, nil
}

// preprocess copies the artifact to a scratch file and runs the user command
// on it through a shell, so pipelines and redirects work. The scratch file
// replaces the original as the transfer source.
func (p *Preparer) preprocess(ctx context.Context, prepared *Prepared, command string) error {
	scratch, err := os.CreateTemp("", prepared.RemoteName+"-*")
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}

	scratchPath := scratch.Name()
	prepared.temps = append(prepared.temps, scratchPath)

	src, err := os.Open(prepared.LocalPath)
	if err != nil {
		_ = scratch.Close()

		return err
	}

	_, copyErr := io.Copy(scratch, src)
	_ = src.Close()

	if err := scratch.Close(); copyErr == nil {
		copyErr = err
	}

	if copyErr != nil {
		return fmt.Errorf("copy artifact to scratch: %w", copyErr)
	}

	line := buildPreprocessLine(command, scratchPath)

	res, err := p.exec.RunScript(ctx, line, rigrun.WithCheck())
	if err != nil {
		if res != nil && len(res.Stderr) > 0 {
			p.log.Error().Str("stderr", strings.TrimSpace(string(res.Stderr))).Msg("preprocess command failed")
		}

		return fmt.Errorf("preprocess command failed: %w", err)
	}

	info, err := os.Stat(scratchPath)
	if err != nil {
		return err
	}

	prepared.LocalPath = scratchPath
	prepared.Size = info.Size()

	p.log.Debug().Str("scratch", scratchPath).Msg("preprocessed artifact")

	return nil
}

func (p *Preparer) compress(prepared *Prepared) error {
	gzPath := prepared.LocalPath + GzipSuffix

	src, err := os.Open(prepared.LocalPath)
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	dst, err := os.Create(gzPath)
	if err != nil {
		return err
	}

	defer func() { _ = dst.Close() }()

	zw := gzip.NewWriter(dst)
	zw.Name = prepared.RemoteName

	if _, err := io.Copy(zw, src); err != nil {
		return fmt.Errorf("compress %q: %w", prepared.LocalPath, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress %q: %w", prepared.LocalPath, err)
	}

	if err := dst.Close(); err != nil {
		return err
	}

	info, err := os.Stat(gzPath)
	if err != nil {
		return err
	}

	prepared.LocalPath = gzPath
	prepared.TransferName = prepared.RemoteName + GzipSuffix
	prepared.Compressed = true
	prepared.Size = info.Size()
	prepared.temps = append(prepared.temps, gzPath)

	p.log.Debug().Str("gz", gzPath).Int64("size", info.Size()).Msg("compressed artifact")

	return nil
}

// buildPreprocessLine substitutes the placeholder token with the quoted
// scratch path, or appends the path when no token is present.
func buildPreprocessLine(command, scratchPath string) string {
	quoted := rigrun.Quote(scratchPath)

	if strings.Contains(command, PathPlaceholder) {
		return strings.ReplaceAll(command, PathPlaceholder, quoted)
	}

	return command + " " + quoted
}
