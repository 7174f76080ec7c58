package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/maciespectre/internal/estimate"
	"github.com/ppiankov/maciespectre/internal/fanout"
	"github.com/ppiankov/maciespectre/internal/macie"
	"github.com/ppiankov/maciespectre/internal/report"
)

var estimateFlags struct {
	bucket       string
	outputFormat string
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the cost of classifying public buckets or one bucket",
	Long: `Sums the classifiable size Macie reports for every publicly accessible
bucket in each region and prices it at US$1 per GB. With --bucket, the
regions are searched in order and the first region holding the bucket
is priced.`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateFlags.bucket, "bucket", "", "Estimate only this bucket")
	estimateCmd.Flags().StringVarP(&estimateFlags.outputFormat, "format", "f", "text", "Output format: text or json")
}

// bucketSource is the part of a regional Macie client used for estimates.
type bucketSource interface {
	PublicBuckets(ctx context.Context) ([]macie.BucketInfo, error)
	FindBucket(ctx context.Context, name string, logger *slog.Logger) (*macie.BucketInfo, error)
}

// estimatePublic prices the public buckets of every region. Every region
// that answered gets a row, including regions without public buckets.
func estimatePublic(ctx context.Context, regions []string, limit int, clientFor func(string) bucketSource) ([]estimate.RegionTotals, []report.RegionError) {
	results := fanout.Regions(ctx, regions, limit, func(ctx context.Context, r string) ([]macie.BucketInfo, error) {
		buckets, err := clientFor(r).PublicBuckets(ctx)
		for i := range buckets {
			buckets[i].Region = r
		}
		return buckets, err
	})

	var buckets []macie.BucketInfo
	for _, b := range results.Values() {
		buckets = append(buckets, b...)
	}
	grouped, _ := estimate.ByRegion(buckets, estimate.RatePerByte)
	byName := make(map[string]estimate.Totals, len(grouped))
	for _, g := range grouped {
		byName[g.Region] = g.Totals
	}

	totals := make([]estimate.RegionTotals, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			totals = append(totals, estimate.RegionTotals{Region: res.Region, Totals: byName[res.Region]})
		}
	}
	return totals, regionErrors(results)
}

// estimateBucket searches regions in order for name. It returns nil when no
// region knows the bucket.
func estimateBucket(ctx context.Context, regions []string, name string, clientFor func(string) bucketSource) (*macie.BucketInfo, error) {
	info, where, found, err := fanout.Until(ctx, regions, func(ctx context.Context, r string) (*macie.BucketInfo, bool, error) {
		logger.Debug("Looking for bucket", "bucket", name, "region", r)
		b, err := clientFor(r).FindBucket(ctx, name, logger)
		if err != nil {
			return nil, false, err
		}
		if b == nil {
			logger.Debug("Bucket not in region", "bucket", name, "region", r)
		}
		return b, b != nil, nil
	})
	if err != nil || !found {
		return nil, err
	}
	logger.Debug("Found bucket", "bucket", name, "region", where)
	return info, nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		estimateFlags.outputFormat = cfg.Format
	}
	reporter, err := selectReporter(estimateFlags.outputFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	clientFor := func(r string) bucketSource { return s.clients(r) }
	data := report.EstimateData{Meta: s.meta()}

	if estimateFlags.bucket != "" {
		b, err := estimateBucket(ctx, s.regions, estimateFlags.bucket, clientFor)
		if err != nil {
			return enhanceError("bucket lookup", err, globalFlags.concurrency)
		}
		if b == nil {
			return fmt.Errorf("bucket %s not found in any of %d regions", estimateFlags.bucket, len(s.regions))
		}
		t := estimate.Of(*b, estimate.RatePerByte)
		data.Bucket, data.BucketTotal, data.Total = b, &t, t
		return reporter.Estimate(data)
	}

	data.Regions, data.Errors = estimatePublic(ctx, s.regions, globalFlags.concurrency, clientFor)
	data.Total = estimate.Sum(data.Regions)
	if err := reporter.Estimate(data); err != nil {
		return err
	}
	return errRegionsFailed(data.Errors)
}
