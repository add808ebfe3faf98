// Package parallel provides bounded-concurrency helpers used by the fitness
// evaluation pipeline.  Result order always matches input order, so callers
// can zip results back onto the originating individuals without bookkeeping.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item using at most workers concurrent goroutines
// and returns the results in input order.
//
// The first error cancels the shared context and aborts the whole batch;
// results computed before the failure are discarded.  A workers value below
// one means unbounded concurrency.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ForEach is Map without result collection, for side-effecting batch work.
func ForEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	_, err := Map(ctx, workers, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}

//Personal.AI order the ending
