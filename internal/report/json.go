package report

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/maciespectre/internal/macie"
)

// JSONReporter generates JSON reports
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) encode(v any) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Estimate generates a JSON cost estimate
func (r *JSONReporter) Estimate(data EstimateData) error {
	data.Timestamp = data.Timestamp.UTC()
	return r.encode(data)
}

// Usage generates a JSON usage report
func (r *JSONReporter) Usage(data UsageData) error {
	data.Timestamp = data.Timestamp.UTC()
	return r.encode(data)
}

// Findings generates a JSON export summary
func (r *JSONReporter) Findings(data FindingsData) error {
	data.Timestamp = data.Timestamp.UTC()
	return r.encode(data)
}

// Stats generates a JSON per-bucket finding count
func (r *JSONReporter) Stats(data StatsData) error {
	data.Timestamp = data.Timestamp.UTC()
	if data.Counts == nil {
		data.Counts = []macie.BucketFindingCount{}
	}
	return r.encode(data)
}

// Jobs generates a JSON job listing
func (r *JSONReporter) Jobs(data JobsData) error {
	data.Timestamp = data.Timestamp.UTC()
	if data.Jobs == nil {
		data.Jobs = []macie.JobSummary{}
	}
	return r.encode(data)
}

// Enroll generates a JSON enrollment report
func (r *JSONReporter) Enroll(data EnrollData) error {
	data.Timestamp = data.Timestamp.UTC()
	return r.encode(data)
}
