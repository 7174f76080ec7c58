package paginate

import (
	"context"
	"fmt"
	"iter"
)

// Page is one response from a cursor-paginated API.
type Page[T any] struct {
	Items []T
	Next  *string
}

// FetchFunc requests the page that starts at cursor. A nil cursor asks for
// the first page.
type FetchFunc[T any] func(ctx context.Context, cursor *string) (Page[T], error)

// CollectAll follows cursors from the first page until a page arrives
// without one and returns every item in arrival order.
// The first fetch error aborts the walk and is returned wrapped; no partial
// results are returned.
func CollectAll[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var out []T
	for item, err := range All(ctx, fetch) {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// All returns a lazy sequence over every item behind fetch. Pages are
// requested on demand and each range over the sequence starts again from
// the first page. On error the sequence yields a zero item with the error
// and stops.
func All[T any](ctx context.Context, fetch FetchFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var cursor *string
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				var zero T
				yield(zero, err)
				return
			}

			p, err := fetch(ctx, cursor)
			if err != nil {
				var zero T
				yield(zero, fmt.Errorf("page %d: %w", page, err))
				return
			}

			for _, item := range p.Items {
				if !yield(item, nil) {
					return
				}
			}

			if !hasCursor(p.Next) {
				return
			}
			cursor = p.Next
		}
	}
}

// hasCursor treats an empty token the same as a missing one; some APIs
// return "" on the last page.
func hasCursor(next *string) bool {
	return next != nil && *next != ""
}
