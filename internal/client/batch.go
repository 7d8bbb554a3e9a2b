package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// BatchConfig controls parallel file pushing: a worker cap rather than
// always maximizing concurrency.
type BatchConfig struct {
	// MaxWorkers bounds concurrent in-flight pushes. 0 means
	// errgroup.Group's default of unlimited.
	MaxWorkers int
}

// DefaultBatchConfig caps concurrent pushes at a fixed worker count, since
// sealing is CPU-bound and slot assignment at the server is serial anyway.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{MaxWorkers: 8}
}

// PushResult records the outcome of pushing one file in a batch.
type PushResult struct {
	Path string
	Err  error
}

// PushAll reads and pushes every path in paths concurrently, bounded by
// cfg.MaxWorkers. It returns one PushResult per input path, in the same
// order as paths, regardless of which finished first.
func (c *Client) PushAll(ctx context.Context, paths []string, cfg BatchConfig) []PushResult {
	results := make([]PushResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MaxWorkers > 0 {
		g.SetLimit(cfg.MaxWorkers)
	}

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = PushResult{Path: path, Err: c.pushFile(ctx, path)}
			return nil // collect errors per-file in results, not via errgroup's fail-fast
		})
	}
	_ = g.Wait()

	return results
}

func (c *Client) pushFile(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("client: reading %s: %w", path, err)
	}
	return c.Push(filepath.Base(path), body)
}
