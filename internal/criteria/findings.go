package criteria

import (
	"github.com/aws/aws-sdk-go-v2/service/macie2/types"
)

// FindingCriteria is a conjunction of equality predicates over finding
// category, severity and bucket name.
type FindingCriteria struct {
	Category   string
	BucketName string
	// Severities is the accepted set; nil accepts every severity.
	Severities []Severity
}

// ForFindings builds criteria for classification findings, optionally
// limited to one bucket. floor is cumulative: High keeps High, Medium keeps
// High and Medium, Low applies no severity predicate.
func ForFindings(bucket string, floor Severity) FindingCriteria {
	return FindingCriteria{
		Category:   CategoryClassification,
		BucketName: bucket,
		Severities: AtLeast(floor),
	}
}

// ForStatistics builds criteria for classification findings of exactly one
// severity, as used by per-bucket statistics.
func ForStatistics(bucket string, severity Severity) FindingCriteria {
	c := FindingCriteria{
		Category:   CategoryClassification,
		BucketName: bucket,
	}
	if severity != "" {
		c.Severities = []Severity{severity}
	}
	return c
}

// Macie renders the criteria in the Macie API shape.
func (c FindingCriteria) Macie() *types.FindingCriteria {
	criterion := map[string]types.CriterionAdditionalProperties{
		keyCategory: {Eq: []string{c.Category}},
	}
	if c.BucketName != "" {
		criterion[keyBucketName] = types.CriterionAdditionalProperties{Eq: []string{c.BucketName}}
	}
	if len(c.Severities) > 0 {
		values := make([]string, len(c.Severities))
		for i, s := range c.Severities {
			values[i] = string(s)
		}
		criterion[keySeverity] = types.CriterionAdditionalProperties{Eq: values}
	}
	return &types.FindingCriteria{Criterion: criterion}
}

// Matches evaluates the criteria locally against a finding's attributes.
func (c FindingCriteria) Matches(category, bucket string, severity Severity) bool {
	if c.Category != "" && category != c.Category {
		return false
	}
	if c.BucketName != "" && bucket != c.BucketName {
		return false
	}
	if len(c.Severities) == 0 {
		return true
	}
	for _, s := range c.Severities {
		if s == severity {
			return true
		}
	}
	return false
}
