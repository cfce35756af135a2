// Package parallel runs blocking calls concurrently with a bounded number of
// goroutines and collects their results in submission order.
//
// The first task to fail cancels the context shared by the batch. Tasks
// already running are still waited for before the error is returned, and no
// results are returned alongside an error.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes tasks with at most limit of them in flight. A limit of zero
// or less runs every task at once. Tasks communicate results through
// variables they close over; those must not be read unless Run returns nil.
func Run(ctx context.Context, limit int, tasks ...func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return task(ctx)
		})
	}

	return g.Wait()
}

// Map calls fn for every item with at most limit calls in flight and returns
// the results in the order of items. A limit of zero or less means one
// goroutine per item.
func Map[T, R any](
	ctx context.Context,
	limit int,
	items []T,
	fn func(context.Context, T) (R, error),
) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
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
