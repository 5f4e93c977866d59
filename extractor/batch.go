package extractor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/tika-bridge/envelope"
)

// BatchResult is the outcome of one file in a batch.
type BatchResult struct {
	Path     string
	Content  string
	Metadata envelope.Metadata
	Err      error
}

// BatchToString extracts every path as a string with at most limit
// extractions in flight. A limit of zero or less uses the extractor's
// concurrency. Per-file failures are reported in the results and do not stop
// the batch; the returned error is non-nil only when ctx ends first.
// Results are in the order of paths.
func (e *Extractor) BatchToString(ctx context.Context, paths []string, limit int) ([]BatchResult, error) {
	if limit <= 0 {
		limit = e.concurrency
	}
	results := make([]BatchResult, len(paths))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path // per-iteration copies for go1.21 loop semantics
		g.Go(func() error {
			text, md, err := e.ExtractFileToString(ctx, path)
			results[i] = BatchResult{Path: path, Content: text, Metadata: md, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Path == "" && results[i].Err == nil {
				results[i] = BatchResult{Path: paths[i], Err: err}
			}
		}
		return results, err
	}
	return results, nil
}
