package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/maciespectre/internal/awsenv"
	"github.com/ppiankov/maciespectre/internal/fanout"
	"github.com/ppiankov/maciespectre/internal/macie"
	"github.com/ppiankov/maciespectre/internal/report"
)

var usageFlags struct {
	timeRange    string
	billing      bool
	outputFormat string
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show Macie's estimated usage cost per region",
	Long: `Reads Macie's usage totals in every region. Classification spend is
listed per region; the total covers every usage type. With --billing, the
spend billed for Amazon Macie over the same window is read from Cost
Explorer.`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usageFlags.timeRange, "timerange", string(macie.MonthToDate), "Time range: MONTH_TO_DATE or PAST_30_DAYS")
	usageCmd.Flags().BoolVar(&usageFlags.billing, "billing", false, "Also read billed Macie spend from Cost Explorer")
	usageCmd.Flags().StringVarP(&usageFlags.outputFormat, "format", "f", "text", "Output format: text or json")
}

// usageSource is the part of a regional Macie client used for usage totals.
type usageSource interface {
	UsageTotals(ctx context.Context, tr macie.TimeRange) ([]macie.UsageTotal, error)
}

// collectUsage reads usage totals of every region and sums the cost of
// every line.
func collectUsage(ctx context.Context, regions []string, limit int, tr macie.TimeRange, clientFor func(string) usageSource) ([]report.RegionUsage, float64, []report.RegionError) {
	results := fanout.Regions(ctx, regions, limit, func(ctx context.Context, r string) (report.RegionUsage, error) {
		totals, err := clientFor(r).UsageTotals(ctx, tr)
		return report.RegionUsage{Region: r, Totals: totals}, err
	})

	usage := results.Values()
	var total float64
	for _, u := range usage {
		total += u.Cost()
	}
	return usage, total, regionErrors(results)
}

// billedSpend reads the Cost Explorer spend for the window matching tr.
func billedSpend(ctx context.Context, client awsenv.CostExplorerClient, tr macie.TimeRange, now time.Time) (*report.Billing, error) {
	start, end := awsenv.BillingWindow(now, tr == macie.MonthToDate)
	periods, total, err := awsenv.MacieSpend(ctx, client, start, end)
	if err != nil {
		return nil, err
	}
	return &report.Billing{Start: start, End: end, Periods: periods, Total: total}, nil
}

func runUsage(cmd *cobra.Command, args []string) error {
	tr, err := macie.ParseTimeRange(usageFlags.timeRange)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		usageFlags.outputFormat = cfg.Format
	}
	reporter, err := selectReporter(usageFlags.outputFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	data := report.UsageData{Meta: s.meta(), TimeRange: tr}
	data.Usage, data.Total, data.Errors = collectUsage(ctx, s.regions, globalFlags.concurrency, tr,
		func(r string) usageSource { return s.clients(r) })

	if usageFlags.billing {
		billing, err := billedSpend(ctx, s.env.Clients.CostExplorer, tr, time.Now())
		if err != nil {
			return enhanceError("Cost Explorer query", err, globalFlags.concurrency)
		}
		data.Billing = billing
	}

	if err := reporter.Usage(data); err != nil {
		return err
	}
	return errRegionsFailed(data.Errors)
}
