package estimate

import "github.com/ppiankov/maciespectre/internal/macie"

const (
	// PricePerGB is the classification price in USD per GiB scanned.
	PricePerGB = 1.0
	// BytesPerGB is the byte size of one billed GiB.
	BytesPerGB = 1 << 30
	// RatePerByte is the derived price of one classifiable byte.
	RatePerByte = PricePerGB / BytesPerGB
)

// BucketCost is the estimated cost of scanning every classifiable byte in
// b at rate. No rounding is applied.
func BucketCost(b macie.BucketInfo, rate float64) float64 {
	return float64(b.ClassifiableSizeInBytes) * rate
}

// Totals is a rollup of bucket estimates.
type Totals struct {
	Cost      float64 `json:"cost_usd"`
	SizeBytes int64   `json:"size_bytes"`
	Count     int     `json:"buckets"`
	Objects   int64   `json:"objects"`
}

// Add merges two rollups. It is associative and commutative, so rollups
// may be combined in any grouping or order.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Cost:      t.Cost + o.Cost,
		SizeBytes: t.SizeBytes + o.SizeBytes,
		Count:     t.Count + o.Count,
		Objects:   t.Objects + o.Objects,
	}
}

// SizeGB is the total size in GiB.
func (t Totals) SizeGB() float64 {
	return float64(t.SizeBytes) / BytesPerGB
}

// Of is the rollup of a single bucket.
func Of(b macie.BucketInfo, rate float64) Totals {
	return Totals{
		Cost:      BucketCost(b, rate),
		SizeBytes: b.ClassifiableSizeInBytes,
		Count:     1,
		Objects:   b.ClassifiableObjectCount,
	}
}

// Aggregate folds buckets into one rollup.
func Aggregate(buckets []macie.BucketInfo, rate float64) Totals {
	var t Totals
	for _, b := range buckets {
		t = t.Add(Of(b, rate))
	}
	return t
}

// RegionTotals is the rollup of one region.
type RegionTotals struct {
	Region string `json:"region"`
	Totals
}

// ByRegion groups buckets by region in first-seen order and returns the
// per-region rollups with their grand total.
func ByRegion(buckets []macie.BucketInfo, rate float64) ([]RegionTotals, Totals) {
	var regions []RegionTotals
	index := make(map[string]int)
	var grand Totals

	for _, b := range buckets {
		i, ok := index[b.Region]
		if !ok {
			i = len(regions)
			index[b.Region] = i
			regions = append(regions, RegionTotals{Region: b.Region})
		}
		bt := Of(b, rate)
		regions[i].Totals = regions[i].Totals.Add(bt)
		grand = grand.Add(bt)
	}
	return regions, grand
}

// Sum combines region rollups into a grand total.
func Sum(regions []RegionTotals) Totals {
	var t Totals
	for _, r := range regions {
		t = t.Add(r.Totals)
	}
	return t
}
