// Package workerpool provides bounded concurrent processing helpers.
package workerpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one item handled by Collect.
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// Process runs process over items on at most workerCount goroutines.
// The first error cancels the remaining work and is returned; onCancel, when set, is invoked once.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
	onCancel func(),
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(workerCount))

	var once sync.Once
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := process(gctx, item); err != nil {
				if onCancel != nil {
					once.Do(onCancel)
				}
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Collect runs fn over items on at most workerCount goroutines and returns one result per item, in
// input order. A failing item does not stop the others.
func Collect[T, R any](
	ctx context.Context,
	workerCount int,
	items []T,
	fn func(context.Context, T) (R, error),
) []Result[T, R] {
	results := make([]Result[T, R], len(items))

	var g errgroup.Group
	g.SetLimit(limit(workerCount))
	for i, item := range items {
		results[i].Item = item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func limit(workerCount int) int {
	if workerCount < 1 {
		return 1
	}
	return workerCount
}
