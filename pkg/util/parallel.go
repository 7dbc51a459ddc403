package util

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel calls fn for every input with at most workerLimit calls in
// flight and returns one error slot per input. Unlike errgroup it does not
// stop at the first failure; only ctx cancels the remaining calls.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) []error {
	errs := make([]error, len(inputs))
	if len(inputs) == 0 {
		return errs
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}

	var g errgroup.Group
	g.SetLimit(workerLimit)
	for i, item := range inputs {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
