package findings

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/macie"
	"github.com/ppiankov/maciespectre/internal/paginate"
)

// DefaultPageSize is the number of finding ids requested per page.
const DefaultPageSize = 40

// Source is the Macie surface needed to read findings in one region.
// *macie.Client satisfies it.
type Source interface {
	Region() string
	ListFindingIDs(ctx context.Context, fc criteria.FindingCriteria, pageSize int32, cursor *string) (paginate.Page[string], error)
	GetFindings(ctx context.Context, ids []string) ([]macie.Finding, error)
}

// Pages returns a fetch function that lists one page of ids and resolves
// them to full findings before returning.
func Pages(src Source, fc criteria.FindingCriteria, pageSize int32) paginate.FetchFunc[macie.Finding] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(ctx context.Context, cursor *string) (paginate.Page[macie.Finding], error) {
		ids, err := src.ListFindingIDs(ctx, fc, pageSize, cursor)
		if err != nil {
			return paginate.Page[macie.Finding]{}, err
		}
		page := paginate.Page[macie.Finding]{Next: ids.Next}
		if len(ids.Items) == 0 {
			return page, nil
		}
		page.Items, err = src.GetFindings(ctx, ids.Items)
		if err != nil {
			return paginate.Page[macie.Finding]{}, err
		}
		return page, nil
	}
}

// All lazily yields every finding matching fc in the source's region.
func All(ctx context.Context, src Source, fc criteria.FindingCriteria, pageSize int32) iter.Seq2[macie.Finding, error] {
	return paginate.All(ctx, Pages(src, fc, pageSize))
}

// Summarize renders the per-category sensitive data counts, one
// "<category>: <count>" line per item in source order, and returns the
// sum of the counts.
func Summarize(f macie.Finding) (string, int64) {
	lines := make([]string, 0, len(f.SensitiveData))
	var total int64
	for _, d := range f.SensitiveData {
		lines = append(lines, d.Category+": "+strconv.FormatInt(d.Count, 10))
		total += d.Count
	}
	return strings.Join(lines, "\n"), total
}

// Tally counts findings per severity.
type Tally map[criteria.Severity]int64

// NewTally returns a tally with every known severity at zero.
func NewTally() Tally {
	t := make(Tally, len(criteria.Severities))
	for _, s := range criteria.Severities {
		t[s] = 0
	}
	return t
}

// Add counts f. A severity outside Low, Medium, High is rejected with
// criteria.ErrUnknownSeverity and nothing is counted.
func (t Tally) Add(f macie.Finding) error {
	s := criteria.Severity(f.Severity)
	if !s.Valid() {
		return fmt.Errorf("finding %s: %w: %q", f.ID, criteria.ErrUnknownSeverity, f.Severity)
	}
	t[s]++
	return nil
}

// Merge adds every count of o into t.
func (t Tally) Merge(o Tally) {
	for s, n := range o {
		t[s] += n
	}
}

// Total is the number of counted findings.
func (t Tally) Total() int64 {
	var n int64
	for _, c := range t {
		n += c
	}
	return n
}

// Sink receives exported records.
type Sink interface {
	Write(Record) error
}

// Export streams every finding matching fc from src into sink and returns
// the severity tally. An unknown severity aborts the export before any
// criteria check. Findings that do not satisfy fc are logged and skipped.
func Export(ctx context.Context, src Source, fc criteria.FindingCriteria, pageSize int32, sink Sink, logger *slog.Logger) (Tally, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tally := NewTally()
	region := src.Region()

	for f, err := range All(ctx, src, fc, pageSize) {
		if err != nil {
			return tally, fmt.Errorf("export findings in %s: %w", region, err)
		}
		if f.Region == "" {
			f.Region = region
		}
		if !criteria.Severity(f.Severity).Valid() {
			return tally, fmt.Errorf("finding %s in %s: %w: %q", f.ID, region, criteria.ErrUnknownSeverity, f.Severity)
		}
		if !fc.Matches(f.Category, f.BucketName, criteria.Severity(f.Severity)) {
			logger.Warn("Skipping finding outside the requested criteria",
				slog.String("id", f.ID),
				slog.String("region", region),
				slog.String("severity", f.Severity))
			continue
		}
		if err := tally.Add(f); err != nil {
			return tally, err
		}
		if err := sink.Write(NewRecord(f)); err != nil {
			return tally, fmt.Errorf("write finding %s: %w", f.ID, err)
		}
	}
	logger.Debug("Exported findings", slog.String("region", region), slog.Int64("count", tally.Total()))
	return tally, nil
}
