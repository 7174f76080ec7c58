package fanout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegions_PreservesInputOrder(t *testing.T) {
	regions := []string{"us-east-1", "eu-west-1", "ap-south-1", "sa-east-1", "us-west-2"}

	results := Regions(context.Background(), regions, 5, func(_ context.Context, region string) (string, error) {
		// Later regions finish first.
		time.Sleep(time.Duration(len(regions)-indexOf(regions, region)) * time.Millisecond)
		return "value-" + region, nil
	})

	for i, r := range results {
		if r.Region != regions[i] || r.Value != "value-"+regions[i] {
			t.Fatalf("result %d out of order: %+v", i, r)
		}
	}
	if got := results.Values(); len(got) != len(regions) {
		t.Fatalf("expected every region to succeed, got %v", got)
	}
}

func TestRegions_IsolatesFailures(t *testing.T) {
	boom := errors.New("AccessDeniedException")
	regions := []string{"a", "b", "c"}

	results := Regions(context.Background(), regions, 2, func(_ context.Context, region string) (int, error) {
		if region == "b" {
			return 0, boom
		}
		return len(region), nil
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("other regions must succeed: %+v", results)
	}
	if !errors.Is(results[1].Err, boom) || !strings.HasPrefix(results[1].Err.Error(), "b: ") {
		t.Fatalf("expected region-tagged error, got %v", results[1].Err)
	}
	if got := results.Values(); len(got) != 2 {
		t.Fatalf("expected 2 successful values, got %v", got)
	}
}

func TestRegions_RespectsLimit(t *testing.T) {
	var inFlight, peak int32
	regions := make([]string, 20)
	for i := range regions {
		regions[i] = fmt.Sprintf("r%d", i)
	}

	Regions(context.Background(), regions, 3, func(context.Context, string) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	if peak > 3 {
		t.Fatalf("expected at most 3 concurrent calls, saw %d", peak)
	}
}

func TestRegions_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32

	results := Regions(ctx, []string{"a", "b"}, 0, func(context.Context, string) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	})
	if calls != 0 {
		t.Fatalf("expected no calls after cancel, got %d", calls)
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("expected canceled error for %s, got %v", r.Region, r.Err)
		}
	}
	if len(results.Values()) != 0 {
		t.Fatalf("expected no values after cancel")
	}
}

func TestUntil_StopsAtFirstHit(t *testing.T) {
	var visited []string
	v, region, found, err := Until(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, r string) (string, bool, error) {
		visited = append(visited, r)
		return "job-" + r, r == "b", nil
	})
	if err != nil || !found || region != "b" || v != "job-b" {
		t.Fatalf("unexpected result %q %q %v %v", v, region, found, err)
	}
	if strings.Join(visited, ",") != "a,b" {
		t.Fatalf("expected search to stop at b, visited %v", visited)
	}

	_, _, found, err = Until(context.Background(), []string{"a"}, func(context.Context, string) (int, bool, error) {
		return 0, false, nil
	})
	if found || err != nil {
		t.Fatalf("expected not found, got %v %v", found, err)
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
