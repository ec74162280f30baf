package translate

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// batchFunc sends one request for a batch of items.
type batchFunc func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error)

func splitBatches(items []TranslationItem, size int) [][]TranslationItem {
	var batches [][]TranslationItem
	for i := 0; i < len(items); i += size {
		batches = append(batches, items[i:min(i+size, len(items))])
	}
	return batches
}

// translateBatches runs fn over batches of items, at most concurrency at a
// time. The first failing batch cancels the rest. Results come back sorted
// by index.
func translateBatches(
	ctx context.Context,
	items []TranslationItem,
	size, concurrency int,
	fn batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	batches := splitBatches(items, size)
	if len(batches) == 1 {
		return fn(ctx, batches[0])
	}

	results := make([][]TranslationResult, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			res, err := fn(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []TranslationResult
	for _, r := range results {
		all = append(all, r...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}
