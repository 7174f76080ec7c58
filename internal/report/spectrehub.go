package report

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/maciespectre/internal/findings"
)

// spectre/v1 envelope types

type spectreEnvelope struct {
	Schema    string           `json:"schema"`
	Tool      string           `json:"tool"`
	Version   string           `json:"version"`
	Timestamp string           `json:"timestamp"`
	Target    spectreTarget    `json:"target"`
	Findings  []spectreFinding `json:"findings"`
	Summary   spectreSummary   `json:"summary"`
}

type spectreTarget struct {
	Type    string `json:"type"`
	URIHash string `json:"uri_hash"`
}

type spectreFinding struct {
	ID       string         `json:"id"`
	Severity string         `json:"severity"`
	Location string         `json:"location"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type spectreSummary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Info   int `json:"info"`
}

// HashTarget produces a sha256 hash of the scanned regions and profile for
// target identification.
func HashTarget(regions []string, profile string) string {
	input := strings.Join(regions, ",") + ":" + profile
	h := sha256.Sum256([]byte(input))
	return fmt.Sprintf("sha256:%x", h)
}

// SpectreHubReporter generates spectre/v1 JSON envelope output.
type SpectreHubReporter struct {
	writer io.Writer
}

// NewSpectreHubReporter creates a new SpectreHub reporter.
func NewSpectreHubReporter(w io.Writer) *SpectreHubReporter {
	return &SpectreHubReporter{writer: w}
}

// Generate writes finding records as a spectre/v1 envelope.
func (r *SpectreHubReporter) Generate(meta Meta, records []findings.Record) error {
	envelope := spectreEnvelope{
		Schema:    "spectre/v1",
		Tool:      meta.Tool,
		Version:   meta.Version,
		Timestamp: meta.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		Target: spectreTarget{
			Type:    "macie",
			URIHash: HashTarget(meta.Regions, meta.Profile),
		},
	}

	for _, rec := range records {
		severity := strings.ToLower(rec.Severity)
		envelope.Findings = append(envelope.Findings, spectreFinding{
			ID:       rec.FindingType,
			Severity: severity,
			Location: rec.S3Path,
			Message:  strings.ReplaceAll(rec.Details, "\n", "; "),
			Metadata: map[string]any{
				"finding_id":    rec.ID,
				"account_id":    rec.AccountID,
				"region":        rec.Region,
				"finding_count": rec.FindingCount,
				"console_url":   rec.FindingConsoleURL,
			},
		})
		countSeverity(&envelope.Summary, severity)
	}

	envelope.Summary.Total = len(envelope.Findings)
	if envelope.Findings == nil {
		envelope.Findings = []spectreFinding{}
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope)
}

func countSeverity(s *spectreSummary, severity string) {
	switch severity {
	case "high":
		s.High++
	case "medium":
		s.Medium++
	case "low":
		s.Low++
	default:
		s.Info++
	}
}
