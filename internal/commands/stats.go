package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/fanout"
	"github.com/ppiankov/maciespectre/internal/macie"
	"github.com/ppiankov/maciespectre/internal/report"
)

var statsFlags struct {
	bucket       string
	severity     string
	outputFormat string
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count classification findings of one severity per bucket",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFlags.bucket, "bucket", "", "Only count findings for this bucket")
	statsCmd.Flags().StringVar(&statsFlags.severity, "severity", "", "Count findings of exactly this severity: High, Medium or Low")
	statsCmd.Flags().StringVarP(&statsFlags.outputFormat, "format", "f", "text", "Output format: text or json")
}

type statsSource interface {
	FindingStatistics(ctx context.Context, fc criteria.FindingCriteria) ([]macie.BucketFindingCount, error)
}

// collectStats gathers per-bucket counts from every region in region order.
func collectStats(ctx context.Context, regions []string, limit int, fc criteria.FindingCriteria, clientFor func(string) statsSource) ([]macie.BucketFindingCount, []report.RegionError) {
	results := fanout.Regions(ctx, regions, limit, func(ctx context.Context, r string) ([]macie.BucketFindingCount, error) {
		counts, err := clientFor(r).FindingStatistics(ctx, fc)
		logger.Debug("Finding statistics", "region", r, "buckets", len(counts))
		return counts, err
	})

	var counts []macie.BucketFindingCount
	for _, c := range results.Values() {
		counts = append(counts, c...)
	}
	return counts, regionErrors(results)
}

func runStats(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("severity") && cfg.Severity != "" {
		statsFlags.severity = cfg.Severity
	}
	if statsFlags.severity == "" {
		return errors.New("--severity is required (or set severity in .maciespectre.yaml)")
	}
	severity, err := criteria.ParseSeverity(statsFlags.severity)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		statsFlags.outputFormat = cfg.Format
	}
	reporter, err := selectReporter(statsFlags.outputFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	data := report.StatsData{Meta: s.meta(), Severity: string(severity), Bucket: statsFlags.bucket}
	data.Counts, data.Errors = collectStats(ctx, s.regions, globalFlags.concurrency,
		criteria.ForStatistics(statsFlags.bucket, severity),
		func(r string) statsSource { return s.clients(r) })

	if err := reporter.Stats(data); err != nil {
		return err
	}
	return errRegionsFailed(data.Errors)
}
