package estimate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ppiankov/maciespectre/internal/macie"
)

const tolerance = 1e-9

func TestBucketCost_OneGiB(t *testing.T) {
	b := macie.BucketInfo{BucketName: "b", ClassifiableSizeInBytes: 1_073_741_824}
	if got := BucketCost(b, RatePerByte); got != 1.0 {
		t.Fatalf("expected exactly 1.00, got %v", got)
	}
}

func TestBucketCost_NoRounding(t *testing.T) {
	b := macie.BucketInfo{ClassifiableSizeInBytes: 1 << 29}
	if got := BucketCost(b, RatePerByte); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := BucketCost(macie.BucketInfo{}, RatePerByte); got != 0 {
		t.Fatalf("expected zero cost for empty bucket, got %v", got)
	}
}

func TestAggregate(t *testing.T) {
	buckets := []macie.BucketInfo{
		{ClassifiableSizeInBytes: 2 << 30, ClassifiableObjectCount: 10},
		{ClassifiableSizeInBytes: 1 << 30, ClassifiableObjectCount: 5},
	}
	got := Aggregate(buckets, RatePerByte)
	if got.Cost != 3 || got.SizeBytes != 3<<30 || got.Count != 2 || got.Objects != 15 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.SizeGB() != 3 {
		t.Fatalf("expected 3 GiB, got %v", got.SizeGB())
	}
	if empty := Aggregate(nil, RatePerByte); empty != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", empty)
	}
}

func TestAggregate_AdditiveOverPartitions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	buckets := make([]macie.BucketInfo, 200)
	for i := range buckets {
		buckets[i] = macie.BucketInfo{
			ClassifiableSizeInBytes: rng.Int63n(1 << 40),
			ClassifiableObjectCount: rng.Int63n(1_000_000),
		}
	}
	whole := Aggregate(buckets, RatePerByte)

	for _, groups := range []int{1, 2, 3, 7, 50, 200} {
		parts := make([][]macie.BucketInfo, groups)
		for _, b := range buckets {
			g := rng.Intn(groups)
			parts[g] = append(parts[g], b)
		}

		var sum Totals
		for _, p := range parts {
			sum = sum.Add(Aggregate(p, RatePerByte))
		}
		if math.Abs(sum.Cost-whole.Cost) > tolerance*whole.Cost {
			t.Fatalf("%d groups: cost %v != %v", groups, sum.Cost, whole.Cost)
		}
		if sum.SizeBytes != whole.SizeBytes || sum.Count != whole.Count || sum.Objects != whole.Objects {
			t.Fatalf("%d groups: integer totals differ: %+v vs %+v", groups, sum, whole)
		}
	}
}

func TestTotalsAdd_CommutativeAssociative(t *testing.T) {
	a := Totals{Cost: 1.5, SizeBytes: 10, Count: 1, Objects: 2}
	b := Totals{Cost: 2.25, SizeBytes: 20, Count: 2, Objects: 3}
	c := Totals{Cost: 0.125, SizeBytes: 5, Count: 1, Objects: 1}

	if a.Add(b) != b.Add(a) {
		t.Fatalf("Add is not commutative")
	}
	if a.Add(b).Add(c) != a.Add(b.Add(c)) {
		t.Fatalf("Add is not associative")
	}
}

func TestByRegion(t *testing.T) {
	buckets := []macie.BucketInfo{
		{Region: "us-east-1", ClassifiableSizeInBytes: 1 << 30},
		{Region: "eu-west-1", ClassifiableSizeInBytes: 2 << 30},
		{Region: "us-east-1", ClassifiableSizeInBytes: 1 << 30},
	}

	regions, grand := ByRegion(buckets, RatePerByte)
	if len(regions) != 2 || regions[0].Region != "us-east-1" || regions[1].Region != "eu-west-1" {
		t.Fatalf("expected first-seen region order, got %+v", regions)
	}
	if regions[0].Cost != 2 || regions[0].Count != 2 || regions[1].Cost != 2 {
		t.Fatalf("unexpected region totals: %+v", regions)
	}
	if grand != Sum(regions) {
		t.Fatalf("grand total %+v must equal sum of regions %+v", grand, Sum(regions))
	}
	if grand != Aggregate(buckets, RatePerByte) {
		t.Fatalf("grand total must equal aggregate")
	}
}
