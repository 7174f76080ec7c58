package awsenv

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/ppiankov/maciespectre/internal/paginate"
)

// MacieServiceName is the Cost Explorer SERVICE dimension value for Macie.
const MacieServiceName = "Amazon Macie"

const costMetric = "UnblendedCost"

// PeriodCost is the billed Macie spend over one Cost Explorer period.
type PeriodCost struct {
	Start   string  `json:"start"`
	End     string  `json:"end"`
	CostUSD float64 `json:"cost_usd"`
}

// BillingWindow returns the [start, end) dates Cost Explorer expects for
// the Macie usage time range ending at now. MONTH_TO_DATE starts on the
// first of the month; anything else covers the last 30 days.
func BillingWindow(now time.Time, monthToDate bool) (start, end string) {
	now = now.UTC()
	endDay := now.AddDate(0, 0, 1)
	var startDay time.Time
	if monthToDate {
		startDay = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		startDay = now.AddDate(0, 0, -30)
	}
	return startDay.Format(time.DateOnly), endDay.Format(time.DateOnly)
}

// MacieSpend returns the billed Macie cost per month over [start, end) and
// the total across periods.
func MacieSpend(ctx context.Context, client CostExplorerClient, start, end string) ([]PeriodCost, float64, error) {
	periods, err := paginate.CollectAll(ctx, func(ctx context.Context, cursor *string) (paginate.Page[PeriodCost], error) {
		out, err := client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(start),
				End:   aws.String(end),
			},
			Granularity: cetypes.GranularityMonthly,
			Metrics:     []string{costMetric},
			Filter: &cetypes.Expression{
				Dimensions: &cetypes.DimensionValues{
					Key:    cetypes.DimensionService,
					Values: []string{MacieServiceName},
				},
			},
			NextPageToken: cursor,
		})
		if err != nil {
			return paginate.Page[PeriodCost]{}, err
		}

		page := paginate.Page[PeriodCost]{Next: out.NextPageToken}
		for _, r := range out.ResultsByTime {
			pc := PeriodCost{}
			if r.TimePeriod != nil {
				pc.Start = aws.ToString(r.TimePeriod.Start)
				pc.End = aws.ToString(r.TimePeriod.End)
			}
			if m, ok := r.Total[costMetric]; ok {
				pc.CostUSD = parseAmount(m.Amount)
			}
			page.Items = append(page.Items, pc)
		}
		return page, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("GetCostAndUsage: %w", err)
	}

	var total float64
	for _, p := range periods {
		total += p.CostUSD
	}
	return periods, total, nil
}

func parseAmount(s *string) float64 {
	if s == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return 0
	}
	return v
}
