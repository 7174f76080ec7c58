package macie

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/macie2/types"
)

// TimeRange is the window covered by usage totals.
type TimeRange string

const (
	MonthToDate TimeRange = TimeRange(types.TimeRangeMonthToDate)
	Past30Days  TimeRange = TimeRange(types.TimeRangePast30Days)
)

// Phrase is the human wording of a time range used in reports.
func (t TimeRange) Phrase() string {
	switch t {
	case Past30Days:
		return "in the past 30 days"
	default:
		return "month to date"
	}
}

// ParseTimeRange accepts MONTH_TO_DATE or PAST_30_DAYS. Empty means
// MONTH_TO_DATE.
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "", MonthToDate:
		return MonthToDate, nil
	case Past30Days:
		return Past30Days, nil
	}
	return "", fmt.Errorf("unknown time range %q (expected %s or %s)", s, MonthToDate, Past30Days)
}

// UsageTotals returns the estimated usage cost lines for the window.
func (c *Client) UsageTotals(ctx context.Context, tr TimeRange) ([]UsageTotal, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	out, err := c.api.GetUsageTotals(ctx, &macie2.GetUsageTotalsInput{
		TimeRange: aws.String(string(tr)),
	})
	if err != nil {
		return nil, fmt.Errorf("get usage totals in %s: %w", c.region, err)
	}

	totals := make([]UsageTotal, 0, len(out.UsageTotals))
	for _, u := range out.UsageTotals {
		totals = append(totals, UsageTotal{
			Type:          string(u.Type),
			EstimatedCost: aws.ToString(u.EstimatedCost),
			Currency:      string(u.Currency),
		})
	}
	return totals, nil
}

// Cost parses the estimated cost. Unparseable values count as zero.
func (u UsageTotal) Cost() float64 {
	v, err := strconv.ParseFloat(u.EstimatedCost, 64)
	if err != nil {
		return 0
	}
	return v
}

// Billable reports whether the line is classification usage with a
// nonzero cost.
func (u UsageTotal) Billable() bool {
	return u.Type == UsageTypeSensitiveDataDiscovery && u.Cost() != 0
}
