package index

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type extracted struct {
	item *workItem
	err  error
}

// extractParallel parses items on a worker pool, each into its own
// BatchedStore, while the calling goroutine commits finished batches one
// at a time. SQLite sees a single writer.
func (ix *Indexer) extractParallel(ctx context.Context, items []*workItem, res *Result) []error {
	if len(items) == 0 {
		return nil
	}
	workers := ix.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(items)))

	results := make(chan extracted, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	go func() {
		for _, item := range items {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results <- extracted{item: item, err: err}
					return nil
				}
				results <- extracted{item: item, err: extractItem(gctx, item)}
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	var errs []error
	for r := range results {
		if err := ix.commit(r.item, r.err, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
