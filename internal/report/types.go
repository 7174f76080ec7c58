package report

import (
	"time"

	"github.com/ppiankov/maciespectre/internal/awsenv"
	"github.com/ppiankov/maciespectre/internal/baseline"
	"github.com/ppiankov/maciespectre/internal/enroll"
	"github.com/ppiankov/maciespectre/internal/estimate"
	"github.com/ppiankov/maciespectre/internal/findings"
	"github.com/ppiankov/maciespectre/internal/macie"
)

// Reporter interface for different report formats
type Reporter interface {
	Estimate(data EstimateData) error
	Usage(data UsageData) error
	Findings(data FindingsData) error
	Stats(data StatsData) error
	Jobs(data JobsData) error
	Enroll(data EnrollData) error
}

// Meta is the header shared by every report
type Meta struct {
	Tool      string        `json:"tool"`
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Profile   string        `json:"aws_profile,omitempty"`
	Regions   []string      `json:"regions,omitempty"`
	Errors    []RegionError `json:"errors,omitempty"`
}

// RegionError records a region that could not be processed
type RegionError struct {
	Region string `json:"region"`
	Error  string `json:"error"`
}

// EstimateData is the projected cost of classifying buckets
type EstimateData struct {
	Meta
	// Bucket is set when a single bucket was estimated.
	Bucket      *macie.BucketInfo       `json:"bucket,omitempty"`
	BucketTotal *estimate.Totals        `json:"bucket_total,omitempty"`
	Regions     []estimate.RegionTotals `json:"regional,omitempty"`
	Total       estimate.Totals         `json:"total"`
}

// UsageData is Macie's own estimate of accrued cost
type UsageData struct {
	Meta
	TimeRange macie.TimeRange `json:"time_range"`
	Usage     []RegionUsage   `json:"usage"`
	Total     float64         `json:"total_cost_usd"`
	Billing   *Billing        `json:"billing,omitempty"`
}

// RegionUsage holds the usage lines reported by one region
type RegionUsage struct {
	Region string             `json:"region"`
	Totals []macie.UsageTotal `json:"totals"`
}

// Cost sums every usage line of the region.
func (r RegionUsage) Cost() float64 {
	var total float64
	for _, t := range r.Totals {
		total += t.Cost()
	}
	return total
}

// Billing is the spend billed through Cost Explorer
type Billing struct {
	Start   string              `json:"start"`
	End     string              `json:"end"`
	Periods []awsenv.PeriodCost `json:"periods"`
	Total   float64             `json:"total_cost_usd"`
}

// FindingsData summarizes a findings export
type FindingsData struct {
	Meta
	Output   string               `json:"output"`
	Format   string               `json:"format"`
	Severity string               `json:"severity"`
	Bucket   string               `json:"bucket,omitempty"`
	Tally    findings.Tally       `json:"tally"`
	Baseline *baseline.DiffResult `json:"baseline,omitempty"`
}

// StatsData is the per-bucket finding count
type StatsData struct {
	Meta
	Severity string                     `json:"severity"`
	Bucket   string                     `json:"bucket,omitempty"`
	Counts   []macie.BucketFindingCount `json:"counts"`
}

// JobsData lists classification jobs
type JobsData struct {
	Meta
	Jobs []macie.JobSummary `json:"jobs"`
}

// EnrollData is the result of reconciling membership in every region
type EnrollData struct {
	Meta
	Commit  bool                   `json:"commit"`
	Roster  int                    `json:"roster"`
	Export  *awsenv.ExportCheck    `json:"export_check,omitempty"`
	Results []*enroll.RegionResult `json:"results"`
}
