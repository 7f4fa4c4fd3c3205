package constraints

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reglet-dev/constrain"
)

// ForList lifts an element constraint to a whole-list constraint: the list
// is valid when every element satisfies c. Elements are checked
// concurrently; the result of the lowest-indexed failing element is
// reported.
//
// This checks all elements on every run. For incremental per-element
// validation with individual element states, use ElementConstraints on a
// constrain.List instead.
func ForList[E, D any](c constrain.Constraint[E, D]) constrain.Constraint[[]E, D] {
	return constrain.New(func(ctx context.Context, items []E) (constrain.Result[D], error) {
		results := make([]constrain.Result[D], len(items))

		g, ctx := errgroup.WithContext(ctx)
		for i, item := range items {
			g.Go(func() error {
				res, err := c.Check(ctx, item)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return constrain.Result[D]{}, err
		}

		for _, res := range results {
			if !res.IsValid() {
				return res, nil
			}
		}
		return constrain.Valid[D](), nil
	}, c.Dependencies()...)
}

// ForSet lifts an element constraint to a whole-set constraint over the
// set's elements.
func ForSet[E, D any](c constrain.Constraint[E, D]) constrain.Constraint[[]E, D] {
	return ForList(c)
}

// ForMap lifts a value constraint to a whole-map constraint: the map is
// valid when every entry's value satisfies c. Entries are checked
// concurrently; one failing entry's result is reported.
func ForMap[K comparable, V, D any](c constrain.Constraint[V, D]) constrain.Constraint[map[K]V, D] {
	return constrain.New(func(ctx context.Context, entries map[K]V) (constrain.Result[D], error) {
		results := make(chan constrain.Result[D], len(entries))

		g, ctx := errgroup.WithContext(ctx)
		for _, value := range entries {
			g.Go(func() error {
				res, err := c.Check(ctx, value)
				if err != nil {
					return err
				}
				results <- res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return constrain.Result[D]{}, err
		}
		close(results)

		for res := range results {
			if !res.IsValid() {
				return res, nil
			}
		}
		return constrain.Valid[D](), nil
	}, c.Dependencies()...)
}
