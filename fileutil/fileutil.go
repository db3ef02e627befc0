// Package fileutil provides shared file-transfer helpers for rigrun
// providers: progress reporting and context-aware copying.
package fileutil

import (
	"context"
	"io"

	"github.com/rigrun/rigrun"
)

// ProgressReader wraps an io.Reader to report progress via a
// rigrun.ProgressFunc. Total should be the known total size, or 0 if unknown.
type ProgressReader struct {
	io.Reader

	Total   int64
	Current int64
	Fn      rigrun.ProgressFunc
}

// Read reads from the underlying reader and reports progress.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	if n > 0 {
		pr.Current += int64(n)
		if pr.Fn != nil {
			pr.Fn(pr.Current, pr.Total)
		}
	}

	return n, err
}

// ContextReader wraps an io.Reader to check for context cancellation before
// each Read, so long io.Copy operations can be interrupted.
type ContextReader struct {
	Ctx    context.Context //nolint:containedctx
	Reader io.Reader
}

// Read checks for cancellation before delegating to the underlying reader.
func (cr *ContextReader) Read(p []byte) (int, error) {
	if cr.Ctx.Err() != nil {
		return 0, cr.Ctx.Err()
	}

	return cr.Reader.Read(p)
}

// Copy copies src to dst honoring context cancellation and, when cfg carries
// a progress callback, reporting transfer progress against total.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, total int64, cfg rigrun.FileConfig) (int64, error) {
	var reader io.Reader = &ContextReader{Ctx: ctx, Reader: src}
	if cfg.Progress != nil {
		reader = &ProgressReader{Reader: reader, Total: total, Fn: cfg.Progress}
	}

	return io.Copy(dst, reader)
}
