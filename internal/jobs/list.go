package jobs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/macie2/types"

	"github.com/ppiankov/maciespectre/internal/macie"
)

// Statuses are the job statuses accepted by the listing filter.
var Statuses = []string{"RUNNING", "PAUSED", "CANCELLED", "COMPLETE", "IDLE", "USER_PAUSED"}

// ListFilter narrows a job listing.
type ListFilter struct {
	Status  string
	Weekly  bool
	OneTime bool
}

// Validate rejects unknown statuses.
func (f ListFilter) Validate() error {
	if f.Status != "" && !slices.Contains(Statuses, f.Status) {
		return fmt.Errorf("unknown job status %q (expected one of %s)", f.Status, strings.Join(Statuses, ", "))
	}
	return nil
}

// Criteria renders the filter for ListClassificationJobs. It returns nil
// when nothing is filtered.
func (f ListFilter) Criteria() *types.ListJobsFilterCriteria {
	var terms []types.ListJobsFilterTerm
	if f.Status != "" {
		terms = append(terms, eq(types.ListJobsFilterKeyJobStatus, f.Status))
	}
	if f.Weekly {
		terms = append(terms, eq(types.ListJobsFilterKeyJobType, string(Scheduled)))
	}
	if f.OneTime {
		terms = append(terms, eq(types.ListJobsFilterKeyJobType, string(OneTime)))
	}
	if len(terms) == 0 {
		return nil
	}
	return &types.ListJobsFilterCriteria{Includes: terms}
}

func eq(key types.ListJobsFilterKey, value string) types.ListJobsFilterTerm {
	return types.ListJobsFilterTerm{
		Comparator: types.JobComparatorEq,
		Key:        key,
		Values:     []string{value},
	}
}

// Lines renders a listed job as human-readable lines; a job with several
// bucket definitions gets one line per definition.
func Lines(j macie.JobSummary) []string {
	created := "unknown"
	if j.CreatedAt != nil {
		created = j.CreatedAt.UTC().Format("2006-01-02")
	}
	prefix := fmt.Sprintf("%s in %s type %s status %s created %s", j.Name, j.Region, j.Type, j.Status, created)

	switch j.Scope {
	case macie.ScopePublicBuckets:
		return []string{prefix + " for public buckets"}
	case macie.ScopeBuckets:
		lines := make([]string, 0, len(j.Buckets))
		for _, bd := range j.Buckets {
			lines = append(lines, fmt.Sprintf("%s for [%s] in account %s", prefix, strings.Join(bd.Buckets, ", "), bd.AccountID))
		}
		return lines
	default:
		return []string{prefix + " with custom criteria"}
	}
}
