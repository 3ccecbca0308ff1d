// Package pool runs a batch of independent operations with a hard cap
// on how many execute simultaneously. It is the coordination primitive
// behind every bulk container action: one slow or failing item must
// never stall or abort the rest of the batch.
package pool

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidLimit reports a programming-contract violation: the
// concurrency limit must be at least 1.
var ErrInvalidLimit = errors.New("pool: concurrency limit must be at least 1")

// ItemResult pairs an input item with its captured outcome. A nil Err
// means the handler completed the item successfully.
type ItemResult[T any] struct {
	Item T
	Err  error
}

// ForEach applies fn to every item, running at most limit invocations
// concurrently. Every item is processed exactly once and failures are
// captured per item, never propagated; ForEach returns only after all
// items have completed. The returned slice is ordered by completion,
// which is non-deterministic across runs.
//
// If ctx is cancelled mid-batch, items not yet started are recorded as
// failed with the context error so the result still accounts for the
// whole batch.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) ([]ItemResult[T], error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if len(items) == 0 {
		return nil, nil
	}
	if limit > len(items) {
		limit = len(items)
	}

	feed := make(chan T)
	results := make([]ItemResult[T], 0, len(items))

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(limit)

	for i := 0; i < limit; i++ {
		go func() {
			defer wg.Done()
			for item := range feed {
				err := ctx.Err()
				if err == nil {
					err = fn(ctx, item)
				}
				mu.Lock()
				results = append(results, ItemResult[T]{Item: item, Err: err})
				mu.Unlock()
			}
		}()
	}

	for _, item := range items {
		feed <- item
	}
	close(feed)
	wg.Wait()

	return results, nil
}
