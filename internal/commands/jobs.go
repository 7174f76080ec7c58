package commands

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/macie2/types"
	"github.com/spf13/cobra"

	"github.com/ppiankov/maciespectre/internal/fanout"
	"github.com/ppiankov/maciespectre/internal/jobs"
	"github.com/ppiankov/maciespectre/internal/macie"
	"github.com/ppiankov/maciespectre/internal/report"
)

var jobsFlags struct {
	status       string
	weekly       bool
	onetime      bool
	outputFormat string
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List classification jobs in every region",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsFlags.status, "status", "", "Only show jobs with this status (RUNNING, PAUSED, CANCELLED, COMPLETE, IDLE, USER_PAUSED)")
	jobsCmd.Flags().BoolVar(&jobsFlags.weekly, "weekly", false, "Only show scheduled jobs")
	jobsCmd.Flags().BoolVar(&jobsFlags.onetime, "onetime", false, "Only show one-time jobs")
	jobsCmd.Flags().StringVarP(&jobsFlags.outputFormat, "format", "f", "text", "Output format: text or json")
}

type jobLister interface {
	ListClassificationJobs(ctx context.Context, filter *types.ListJobsFilterCriteria) ([]macie.JobSummary, error)
}

// collectJobs lists the jobs of every region in region order.
func collectJobs(ctx context.Context, regions []string, limit int, filter jobs.ListFilter, clientFor func(string) jobLister) ([]macie.JobSummary, []report.RegionError) {
	criteria := filter.Criteria()
	results := fanout.Regions(ctx, regions, limit, func(ctx context.Context, r string) ([]macie.JobSummary, error) {
		return clientFor(r).ListClassificationJobs(ctx, criteria)
	})

	var all []macie.JobSummary
	for _, j := range results.Values() {
		all = append(all, j...)
	}
	return all, regionErrors(results)
}

func runJobs(cmd *cobra.Command, args []string) error {
	filter := jobs.ListFilter{Status: jobsFlags.status, Weekly: jobsFlags.weekly, OneTime: jobsFlags.onetime}
	if err := filter.Validate(); err != nil {
		return err
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		jobsFlags.outputFormat = cfg.Format
	}
	reporter, err := selectReporter(jobsFlags.outputFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	data := report.JobsData{Meta: s.meta()}
	data.Jobs, data.Errors = collectJobs(ctx, s.regions, globalFlags.concurrency, filter,
		func(r string) jobLister { return s.clients(r) })

	if err := reporter.Jobs(data); err != nil {
		return err
	}
	return errRegionsFailed(data.Errors)
}
