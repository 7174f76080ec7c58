package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/maciespectre/internal/awsenv"
	"github.com/ppiankov/maciespectre/internal/dispatch"
	"github.com/ppiankov/maciespectre/internal/enroll"
	"github.com/ppiankov/maciespectre/internal/fanout"
	"github.com/ppiankov/maciespectre/internal/report"
)

var enableFlags struct {
	exportBucket string
	kmsKey       string
	commit       bool
	outputFormat string
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enroll every organization account as a Macie member",
	Long: `Reconciles Macie membership in every region with the organization's
account list: turns on auto-enable for new accounts, points the findings
export at --export-bucket encrypted with --kms-key, and creates a member
for every active account that is not enrolled yet.

Nothing is changed unless --commit is given.`,
	RunE: runEnable,
}

func init() {
	enableCmd.Flags().StringVar(&enableFlags.exportBucket, "export-bucket", "", "S3 bucket receiving exported findings")
	enableCmd.Flags().StringVar(&enableFlags.kmsKey, "kms-key", "", "ARN of the KMS key encrypting exported findings")
	enableCmd.Flags().BoolVar(&enableFlags.commit, "commit", false, "Apply the changes (default is a dry run)")
	enableCmd.Flags().StringVarP(&enableFlags.outputFormat, "format", "f", "text", "Output format: text or json")
}

// reconcileRegions reconciles every region against roster. A region whose
// reads fail is recorded and the others continue.
func reconcileRegions(ctx context.Context, regions []string, limit int, roster []awsenv.Account, opts enroll.Options, d *dispatch.Dispatcher, enrollerFor func(string) enroll.Enroller) ([]*enroll.RegionResult, []report.RegionError) {
	results := fanout.Regions(ctx, regions, limit, func(ctx context.Context, r string) (*enroll.RegionResult, error) {
		return enroll.ReconcileRegion(ctx, enrollerFor(r), roster, opts, d, logger)
	})

	return results.Values(), regionErrors(results)
}

// failedOutcomes counts failed mutations across regions.
func failedOutcomes(results []*enroll.RegionResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Outcomes.Failed())
	}
	return n
}

func runEnable(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("export-bucket") && cfg.ExportBucket != "" {
		enableFlags.exportBucket = cfg.ExportBucket
	}
	if !cmd.Flags().Changed("kms-key") && cfg.KMSKey != "" {
		enableFlags.kmsKey = cfg.KMSKey
	}
	if (enableFlags.exportBucket == "") != (enableFlags.kmsKey == "") {
		return errors.New("--export-bucket and --kms-key must be given together")
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		enableFlags.outputFormat = cfg.Format
	}
	reporter, err := selectReporter(enableFlags.outputFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	selfID, err := s.env.ResolveAccount(ctx)
	if err != nil {
		return enhanceError("caller identity", err, globalFlags.concurrency)
	}

	roster, err := awsenv.NewRoster(s.env.Clients.Organizations, awsenv.DefaultRosterPause).Accounts(ctx)
	if err != nil {
		return enhanceError("organization account listing", err, globalFlags.concurrency)
	}
	roster = enroll.Filter(roster, cfg.AccountSet())
	logger.Info("Loaded organization accounts", "accounts", len(roster), "self", selfID)

	data := report.EnrollData{Meta: s.meta(), Commit: enableFlags.commit, Roster: len(roster)}

	if enableFlags.exportBucket != "" {
		check, err := awsenv.CheckExportDestination(ctx, s.env.Clients.S3, s.env.KMSFor, enableFlags.exportBucket, enableFlags.kmsKey)
		if err != nil {
			return enhanceError("export destination check", err, globalFlags.concurrency)
		}
		data.Export = check
		if !check.OK() {
			for _, p := range check.Problems {
				logger.Error("Export destination problem", "problem", p)
			}
			if enableFlags.commit {
				_ = reporter.Enroll(data)
				return fmt.Errorf("export destination %s is not usable", enableFlags.exportBucket)
			}
		}
	}

	opts := enroll.Options{SelfID: selfID, ExportBucket: enableFlags.exportBucket, KMSKeyARN: enableFlags.kmsKey}
	d := dispatch.New(enableFlags.commit, logger)
	data.Results, data.Errors = reconcileRegions(ctx, s.regions, globalFlags.concurrency, roster, opts, d,
		func(r string) enroll.Enroller { return s.clients(r) })

	if err := reporter.Enroll(data); err != nil {
		return err
	}
	if n := failedOutcomes(data.Results); n > 0 {
		return fmt.Errorf("%d operation(s) failed", n)
	}
	return errRegionsFailed(data.Errors)
}
