package cmd

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/midtrans/midtrans-cli/internal/api"
)

// DefaultConcurrency is the default number of concurrent gateway calls.
const DefaultConcurrency = 4

// BulkResult is the outcome of one call in a fan-out.
type BulkResult struct {
	ID       string
	Response api.Response
	Err      error
}

// runBulk calls operation once per ID with at most concurrency calls in
// flight. Results keep the order of ids. A failed call does not cancel the
// others; a cancelled ctx leaves the remaining results with ctx.Err().
func runBulk(
	ctx context.Context,
	ids []string,
	concurrency int64,
	operation func(ctx context.Context, id string) (api.Response, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]BulkResult, len(ids))
	sem := semaphore.NewWeighted(concurrency)
	g, gctx := errgroup.WithContext(ctx)

	for i, id := range ids {
		i, id := i, id
		results[i].ID = id
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i].Err = err
				return nil
			}
			defer sem.Release(1)

			// Each goroutine owns results[i]; no lock needed.
			results[i].Response, results[i].Err = operation(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Err == nil {
			success++
		} else {
			failure++
		}
	}
	return
}
