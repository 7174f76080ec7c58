package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/findings"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"

	sarifRulePrefix = "maciespectre/"
)

type SARIFReporter struct {
	writer io.Writer
}

func NewSARIFReporter(w io.Writer) *SARIFReporter {
	return &SARIFReporter{writer: w}
}

type sarifLog struct {
	Schema  string     `json:"$schema,omitempty"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription,omitempty"`
	HelpURI          string       `json:"helpUri,omitempty"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level,omitempty"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation *sarifPhysicalLocation `json:"physicalLocation,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// sarifLevel maps a Macie severity to a SARIF result level.
func sarifLevel(severity string) string {
	switch criteria.Severity(severity) {
	case criteria.SeverityHigh:
		return "error"
	case criteria.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// sarifRuleName turns a finding type such as SensitiveData:S3Object/Personal
// into a rule name like SensitiveDataS3ObjectPersonal.
func sarifRuleName(findingType string) string {
	return strings.NewReplacer(":", "", "/", "").Replace(findingType)
}

// Generate writes one result per finding record, with one rule per finding
// type.
func (r *SARIFReporter) Generate(meta Meta, records []findings.Record) error {
	var results []sarifResult
	usedRules := make(map[string]sarifRule)

	for _, rec := range records {
		ruleID := sarifRulePrefix + rec.FindingType
		if _, exists := usedRules[ruleID]; !exists {
			usedRules[ruleID] = sarifRule{
				ID:               ruleID,
				Name:             sarifRuleName(rec.FindingType),
				ShortDescription: sarifMessage{Text: fmt.Sprintf("Macie classification finding %s", rec.FindingType)},
				HelpURI:          "https://docs.aws.amazon.com/macie/latest/user/findings-types.html",
			}
		}

		message := fmt.Sprintf("%s finding in %s", rec.FindingType, rec.S3Path)
		if rec.Details != "" {
			message += ": " + strings.ReplaceAll(rec.Details, "\n", "; ")
		}

		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   sarifLevel(rec.Severity),
			Message: sarifMessage{Text: message},
			Locations: []sarifLocation{{
				PhysicalLocation: &sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: rec.S3Path},
				},
			}},
			Properties: map[string]any{
				"findingId":     rec.ID,
				"accountId":     rec.AccountID,
				"region":        rec.Region,
				"severity":      rec.Severity,
				"findingCount":  rec.FindingCount,
				"consoleUrl":    rec.FindingConsoleURL,
				"fileExtension": rec.FileExtension,
			},
		})
	}

	return r.writeSARIF(meta.Tool, meta.Version, results, usedRules)
}

func (r *SARIFReporter) writeSARIF(toolName, toolVersion string, results []sarifResult, usedRules map[string]sarifRule) error {
	ruleIDs := make([]string, 0, len(usedRules))
	for id := range usedRules {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	rules := make([]sarifRule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		rules = append(rules, usedRules[id])
	}

	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    toolName,
					Version: toolVersion,
					Rules:   rules,
				},
			},
			Results: results,
		}},
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}
