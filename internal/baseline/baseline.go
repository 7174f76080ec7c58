package baseline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/maciespectre/internal/findings"
)

// Key identifies a finding across exports. Macie finding ids are stable for
// the lifetime of a finding; rows without one fall back to the object and
// finding type.
func Key(r findings.Record) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("%s|%s|%s|%s", r.AccountID, r.BucketName, r.ObjectKey, r.FindingType)
}

// DiffResult holds the outcome of comparing current findings against a baseline.
type DiffResult struct {
	New       []findings.Record `json:"new"`
	Resolved  []findings.Record `json:"resolved"`
	Unchanged int               `json:"unchanged"`
}

// Changed reports whether anything appeared or went away.
func (d DiffResult) Changed() bool {
	return len(d.New) > 0 || len(d.Resolved) > 0
}

// export is the subset of a JSON findings export needed for diffing.
type export struct {
	Records []findings.Record `json:"records"`
}

// Load reads a previous JSON findings export.
func Load(path string) ([]findings.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	var data export
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse baseline: %w", err)
	}
	return data.Records, nil
}

// Diff compares current findings against a baseline. Output keeps the
// order of the input slices.
func Diff(current, baseline []findings.Record) DiffResult {
	baseMap := make(map[string]struct{}, len(baseline))
	for _, r := range baseline {
		baseMap[Key(r)] = struct{}{}
	}
	curMap := make(map[string]struct{}, len(current))
	for _, r := range current {
		curMap[Key(r)] = struct{}{}
	}

	var result DiffResult
	for _, r := range current {
		if _, exists := baseMap[Key(r)]; exists {
			result.Unchanged++
		} else {
			result.New = append(result.New, r)
		}
	}
	for _, r := range baseline {
		if _, exists := curMap[Key(r)]; !exists {
			result.Resolved = append(result.Resolved, r)
		}
	}
	return result
}
