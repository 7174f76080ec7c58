package paginate

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

// pagedSource serves items in pages of size k, numbering cursors by offset.
type pagedSource struct {
	items []int
	k     int
	calls int
	seen  []*string
}

func (s *pagedSource) fetch(_ context.Context, cursor *string) (Page[int], error) {
	s.calls++
	s.seen = append(s.seen, cursor)

	start := 0
	if cursor != nil {
		n, err := strconv.Atoi(*cursor)
		if err != nil {
			return Page[int]{}, err
		}
		start = n
	}
	end := start + s.k
	if end > len(s.items) {
		end = len(s.items)
	}

	page := Page[int]{Items: s.items[start:end]}
	if end < len(s.items) {
		next := strconv.Itoa(end)
		page.Next = &next
	}
	return page, nil
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestCollectAll_Completeness(t *testing.T) {
	for n := 0; n <= 25; n++ {
		for k := 1; k <= 7; k++ {
			src := &pagedSource{items: sequence(n), k: k}

			got, err := CollectAll(context.Background(), src.fetch)
			if err != nil {
				t.Fatalf("n=%d k=%d: unexpected error: %v", n, k, err)
			}
			if len(got) != n {
				t.Fatalf("n=%d k=%d: expected %d items, got %d", n, k, n, len(got))
			}
			for i, v := range got {
				if v != i {
					t.Fatalf("n=%d k=%d: item %d out of order: %d", n, k, i, v)
				}
			}

			wantCalls := 1
			if n > 0 {
				wantCalls = (n + k - 1) / k
			}
			if src.calls != wantCalls {
				t.Fatalf("n=%d k=%d: expected %d fetches, got %d", n, k, wantCalls, src.calls)
			}
			if src.seen[0] != nil {
				t.Fatalf("n=%d k=%d: first fetch must start without a cursor", n, k)
			}
		}
	}
}

func TestCollectAll_EmptyCursorTerminates(t *testing.T) {
	empty := ""
	calls := 0
	fetch := func(_ context.Context, _ *string) (Page[string], error) {
		calls++
		return Page[string]{Items: []string{"a"}, Next: &empty}, nil
	}

	got, err := CollectAll(context.Background(), fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || calls != 1 {
		t.Fatalf("expected a single page, got %d items over %d calls", len(got), calls)
	}
}

func TestCollectAll_ErrorAbortsWithoutPartialResults(t *testing.T) {
	remote := errors.New("ThrottlingException")
	fetch := func(_ context.Context, cursor *string) (Page[int], error) {
		if cursor == nil {
			next := "2"
			return Page[int]{Items: []int{1, 2}, Next: &next}, nil
		}
		return Page[int]{}, remote
	}

	got, err := CollectAll(context.Background(), fetch)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, remote) {
		t.Fatalf("expected remote error to be wrapped, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial results, got %v", got)
	}
}

func TestCollectAll_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &pagedSource{items: sequence(3), k: 1}
	_, err := CollectAll(ctx, src.fetch)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("expected no fetches after cancel, got %d", src.calls)
	}
}

func TestAll_LazyAndRestartable(t *testing.T) {
	src := &pagedSource{items: sequence(10), k: 3}
	seq := All(context.Background(), src.fetch)

	// Stop after the first item: only one page is requested.
	for v, err := range seq {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 0 {
			t.Fatalf("expected first item 0, got %d", v)
		}
		break
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 fetch for early stop, got %d", src.calls)
	}

	// A second traversal restarts from the first page.
	count := 0
	for _, err := range seq {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count++
	}
	if count != 10 {
		t.Fatalf("expected 10 items on full traversal, got %d", count)
	}
	if src.seen[1] != nil {
		t.Fatalf("expected restart with nil cursor")
	}
}
