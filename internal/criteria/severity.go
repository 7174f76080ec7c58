package criteria

import (
	"errors"
	"fmt"
	"strings"
)

// Severity is a Macie finding severity.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ErrUnknownSeverity is returned for any severity outside Low, Medium, High.
var ErrUnknownSeverity = errors.New("unknown severity")

// Severities lists every known severity from most to least severe.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// ParseSeverity accepts Low, Medium or High in any letter case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	}
	return "", fmt.Errorf("%w: %q (expected High, Medium or Low)", ErrUnknownSeverity, s)
}

// Valid reports whether s is one of the known severities. Matching is exact
// because values come straight from the Macie API.
func (s Severity) Valid() bool {
	return s.rank() > 0
}

func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// AtLeast returns floor and every more severe level, most severe first.
// Low is the floor of the scale, so it yields nil: no narrowing is possible.
func AtLeast(floor Severity) []Severity {
	if floor == "" || floor == SeverityLow {
		return nil
	}
	var out []Severity
	for _, s := range Severities {
		if s.rank() >= floor.rank() {
			out = append(out, s)
		}
	}
	return out
}
