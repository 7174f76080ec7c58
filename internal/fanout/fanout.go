package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of running work in one region.
type Result[T any] struct {
	Region string
	Value  T
	Err    error
}

// Results is an ordered list of region results.
type Results[T any] []Result[T]

// Values returns the values of the regions that succeeded, in order.
func (rs Results[T]) Values() []T {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}

// Regions runs fn once per region with at most limit calls in flight and
// returns the results in the same order as regions. A failing region is
// recorded in its result and never cancels the others. limit below 1 runs
// sequentially.
func Regions[T any](ctx context.Context, regions []string, limit int, fn func(ctx context.Context, region string) (T, error)) Results[T] {
	if limit < 1 {
		limit = 1
	}
	results := make(Results[T], len(regions))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, region := range regions {
		results[i].Region = region
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = fmt.Errorf("%s: %w", region, err)
				return nil
			}
			v, err := fn(ctx, region)
			results[i].Value = v
			if err != nil {
				results[i].Err = fmt.Errorf("%s: %w", region, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Until runs fn over regions in order until one reports done, and returns
// that region's value. It is sequential by nature: the search stops at the
// first hit. found is false when no region reported done.
func Until[T any](ctx context.Context, regions []string, fn func(ctx context.Context, region string) (T, bool, error)) (value T, region string, found bool, err error) {
	for _, r := range regions {
		if err := ctx.Err(); err != nil {
			return value, "", false, err
		}
		v, done, err := fn(ctx, r)
		if err != nil {
			return value, r, false, fmt.Errorf("%s: %w", r, err)
		}
		if done {
			return v, r, true, nil
		}
	}
	return value, "", false, nil
}
