package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/maciespectre/internal/baseline"
	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/findings"
	"github.com/ppiankov/maciespectre/internal/report"
)

var findingsFlags struct {
	outputFile   string
	bucket       string
	severity     string
	outputFormat string
	baselinePath string
}

var findingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "Export classification findings to a file",
	Long: `Pages through the classification findings of every region, fetching
their details, and writes one row per finding. --severity is a floor:
Medium exports Medium and High findings, Low exports everything.

With --baseline, the export is compared against a previous JSON export and
new and resolved findings are reported.`,
	RunE: runFindings,
}

func init() {
	findingsCmd.Flags().StringVarP(&findingsFlags.outputFile, "output", "o", "", "File to write findings to")
	findingsCmd.Flags().StringVar(&findingsFlags.bucket, "bucket", "", "Only export findings for this bucket")
	findingsCmd.Flags().StringVar(&findingsFlags.severity, "severity", string(criteria.SeverityMedium), "Export this severity and higher: High, Medium or Low")
	findingsCmd.Flags().StringVarP(&findingsFlags.outputFormat, "format", "f", report.FileCSV, "File format: csv, json, sarif or spectrehub")
	findingsCmd.Flags().StringVar(&findingsFlags.baselinePath, "baseline", "", "Path to a previous JSON export for diff comparison")
	_ = findingsCmd.MarkFlagRequired("output")
}

// exportRegions streams the findings of each region into sink, one region
// after another so that the file keeps region order. A failing region is
// recorded and the export moves on; an unknown severity aborts the run.
func exportRegions(ctx context.Context, regions []string, fc criteria.FindingCriteria, clientFor func(string) findings.Source, sink findings.Sink, logger *slog.Logger) (findings.Tally, []report.RegionError, error) {
	tally := findings.NewTally()
	var failed []report.RegionError

	for _, r := range regions {
		if err := ctx.Err(); err != nil {
			return tally, failed, err
		}
		regional, err := findings.Export(ctx, clientFor(r), fc, findings.DefaultPageSize, sink, logger)
		tally.Merge(regional)
		if err == nil {
			continue
		}
		if errors.Is(err, criteria.ErrUnknownSeverity) || errors.Is(err, context.Canceled) {
			return tally, failed, err
		}
		logger.Error("Region failed", "region", r, "error", err)
		failed = append(failed, report.RegionError{Region: r, Error: err.Error()})
	}
	return tally, failed, nil
}

func runFindings(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("severity") && cfg.Severity != "" {
		findingsFlags.severity = cfg.Severity
	}
	floor, err := criteria.ParseSeverity(findingsFlags.severity)
	if err != nil {
		return err
	}
	fc := criteria.ForFindings(findingsFlags.bucket, floor)

	var previous []findings.Record
	if findingsFlags.baselinePath != "" {
		previous, err = baseline.Load(findingsFlags.baselinePath)
		if err != nil {
			return enhanceError("baseline load", err, globalFlags.concurrency)
		}
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	meta := s.meta()

	f, err := os.Create(findingsFlags.outputFile)
	if err != nil {
		return enhanceError("output file creation", err, globalFlags.concurrency)
	}
	defer func() { _ = f.Close() }()

	fileSink, err := report.NewFindingsSink(findingsFlags.outputFormat, f, meta)
	if err != nil {
		return err
	}
	var current report.RecordBuffer
	sink := findings.Sink(fileSink)
	if findingsFlags.baselinePath != "" {
		sink = report.Tee(fileSink, &current)
	}

	tally, failed, exportErr := exportRegions(ctx, s.regions, fc, func(r string) findings.Source { return s.clients(r) }, sink, logger)
	if err := fileSink.Close(); err != nil {
		return enhanceError("output file write", err, globalFlags.concurrency)
	}
	if exportErr != nil {
		return enhanceError("findings export", exportErr, globalFlags.concurrency)
	}

	data := report.FindingsData{
		Meta:     meta,
		Output:   findingsFlags.outputFile,
		Format:   findingsFlags.outputFormat,
		Severity: string(floor),
		Bucket:   findingsFlags.bucket,
		Tally:    tally,
	}
	data.Errors = failed
	if findingsFlags.baselinePath != "" {
		diff := baseline.Diff(current.Records, previous)
		data.Baseline = &diff
		logger.Info("Baseline comparison",
			slog.Int("new", len(diff.New)),
			slog.Int("resolved", len(diff.Resolved)),
			slog.Int("unchanged", diff.Unchanged),
		)
	}

	reporter, err := selectReporter(cfg.Format, os.Stdout)
	if err != nil {
		return err
	}
	if err := reporter.Findings(data); err != nil {
		return err
	}
	if err := errRegionsFailed(failed); err != nil {
		return fmt.Errorf("export incomplete: %w", err)
	}
	return nil
}
