// Package parallel runs index-range work across CPU cores.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// RangeFunc processes the half-open index range [start, end).
type RangeFunc func(ctx context.Context, start, end int) error

// Parallelize divides items into one contiguous range per CPU core and runs fn
// on each range in its own goroutine. It returns the first error reported by a
// range, or ctx.Err() if the context was cancelled. A panic inside fn is
// converted into an *errors.PanicError.
func Parallelize(ctx context.Context, items int, fn RangeFunc) error {
	if items <= 0 {
		return ctx.Err()
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			if err := runRange(ctx, s, e, fn); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(start, end)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// ParallelizeWithThreshold runs fn sequentially over [0, items) when items
// does not exceed threshold, and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(ctx context.Context, items, threshold int, fn RangeFunc) error {
	if items <= threshold {
		if items <= 0 {
			return ctx.Err()
		}
		return runRange(ctx, 0, items, fn)
	}
	return Parallelize(ctx, items, fn)
}

func runRange(ctx context.Context, start, end int, fn RangeFunc) (err error) {
	defer errors.Recover(&err, fmt.Sprintf("range [%d, %d)", start, end))
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, start, end)
}
