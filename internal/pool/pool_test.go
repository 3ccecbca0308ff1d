package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachProcessesEveryItemOnce(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	var mu sync.Mutex
	seen := make(map[int]int)

	results, err := ForEach(context.Background(), items, 5, func(_ context.Context, n int) error {
		mu.Lock()
		seen[n]++
		mu.Unlock()
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, results, len(items))
	for _, n := range items {
		assert.Equal(t, 1, seen[n], "item %d processed exactly once", n)
	}
}

func TestForEachRespectsConcurrencyCap(t *testing.T) {
	const limit = 3
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight atomic.Int64

	_, err := ForEach(context.Background(), items, limit, func(_ context.Context, _ int) error {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, maxInFlight.Load(), int64(limit), "no more than %d handlers in flight", limit)
	assert.Greater(t, maxInFlight.Load(), int64(1), "batch actually ran concurrently")
}

func TestForEachIsolatesFailures(t *testing.T) {
	items := []string{"a", "b", "poison", "c", "d"}

	results, err := ForEach(context.Background(), items, 2, func(_ context.Context, s string) error {
		if s == "poison" {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err, "executor never fails as a whole due to an item")
	require.Len(t, results, len(items))

	var failed, succeeded int
	for _, r := range results {
		if r.Err != nil {
			failed++
			assert.Equal(t, "poison", r.Item)
			assert.EqualError(t, r.Err, "connection refused")
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 4, succeeded)
}

func TestForEachPartitionInvariant(t *testing.T) {
	items := make([]int, 37)
	for i := range items {
		items[i] = i
	}

	results, err := ForEach(context.Background(), items, 5, func(_ context.Context, n int) error {
		if n%3 == 0 {
			return fmt.Errorf("item %d failed", n)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, results, len(items), "succeeded + failed == total")

	seen := make(map[int]bool)
	for _, r := range results {
		assert.False(t, seen[r.Item], "no duplicates")
		seen[r.Item] = true
	}
}

func TestForEachInvalidLimit(t *testing.T) {
	_, err := ForEach(context.Background(), []int{1}, 0, func(_ context.Context, _ int) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = ForEach(context.Background(), []int{1}, -5, func(_ context.Context, _ int) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestForEachEmptyInput(t *testing.T) {
	called := false
	results, err := ForEach(context.Background(), nil, 5, func(_ context.Context, _ int) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestForEachLimitLargerThanBatch(t *testing.T) {
	results, err := ForEach(context.Background(), []int{1, 2}, 100, func(_ context.Context, _ int) error {
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestForEachCancelledContextAccountsAllItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []int{1, 2, 3, 4}
	results, err := ForEach(ctx, items, 2, func(_ context.Context, _ int) error {
		return nil
	})

	require.NoError(t, err)
	require.Len(t, results, len(items), "cancelled batch still accounts every item")
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
