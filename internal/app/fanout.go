package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ParallelLimit runs fns with at most limit in flight and returns their
// results in order. The first error cancels the rest.
func ParallelLimit[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) ([]T, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]T, len(fns))

	for i, fn := range fns {
		g.Go(func() error {
			result, err := fn(ctx)
			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Delivery is one destination for a document, such as a file or the clipboard.
type Delivery struct {
	Name string
	Send func(ctx context.Context) error
}

// DeliverAll sends to every destination concurrently. A failing
// destination does not stop the others; all failures are joined.
func DeliverAll(ctx context.Context, deliveries ...Delivery) error {
	var g errgroup.Group

	errs := make([]error, len(deliveries))

	for i, d := range deliveries {
		g.Go(func() error {
			if err := d.Send(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", d.Name, err)
			}

			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}
