package batch

import (
	"context"
	"sync"
	"time"
)

// Options controls one Run.
type Options struct {
	// MaxConcurrent is the dispatch ceiling per chunk. Values below 1 are
	// treated as 1.
	MaxConcurrent int
	// InterBatchDelay is slept between chunks. Cooperative rate limiting,
	// not adaptive backpressure.
	InterBatchDelay time.Duration
	// ContinueOnError keeps dispatching after individual failures. When
	// false the first failure aborts remaining dispatch and Run returns
	// that error.
	ContinueOnError bool
}

// Failure pairs a failed input item with its error.
type Failure[T any] struct {
	Item T
	Err  error
}

// Result collects the outcome of a Run with ContinueOnError set. Every
// input item lands in exactly one of the two buckets.
type Result[T, R any] struct {
	Successes []R
	Failures  []Failure[T]
}

// Run pushes items through transform under the concurrency ceiling.
//
// With ContinueOnError false, the returned error is the chronologically
// first failure; successes completed before the abort are discarded and
// the Result is nil. With ContinueOnError true the error is always nil
// and the Result accounts for every item.
//
// Ordering within the buckets follows completion order, not input order.
func Run[T, R any](ctx context.Context, items []T, transform func(context.Context, T) (R, error), opts Options) (*Result[T, R], error) {
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	result := &Result[T, R]{}

	var (
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(items); start += maxConcurrent {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !opts.ContinueOnError && firstErr != nil {
			break
		}

		end := start + maxConcurrent
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		var wg sync.WaitGroup
		wg.Add(len(chunk))
		for _, item := range chunk {
			go func(item T) {
				defer wg.Done()
				out, err := transform(ctx, item)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					result.Failures = append(result.Failures, Failure[T]{Item: item, Err: err})
					return
				}
				result.Successes = append(result.Successes, out)
			}(item)
		}
		// In-flight transforms always run to completion; aborts only stop
		// further dispatch.
		wg.Wait()

		if opts.InterBatchDelay > 0 && end < len(items) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.InterBatchDelay):
			}
		}
	}

	if !opts.ContinueOnError && firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}
