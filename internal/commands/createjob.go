package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/dispatch"
	"github.com/ppiankov/maciespectre/internal/fanout"
	"github.com/ppiankov/maciespectre/internal/jobs"
	"github.com/ppiankov/maciespectre/internal/macie"
)

var createJobFlags struct {
	name        string
	bucket      string
	weekly      bool
	onetime     bool
	sample      int
	description string
	commit      bool
}

var createJobCmd = &cobra.Command{
	Use:   "create-job",
	Short: "Create classification jobs for public buckets or one bucket",
	Long: `Creates one classification job per region named "<name>-<region>".
Without --bucket each job targets every publicly accessible bucket of its
region. With --bucket the regions are searched in order and a single job is
created where the bucket lives.

Nothing is created unless --commit is given.`,
	RunE: runCreateJob,
}

func init() {
	createJobCmd.Flags().StringVar(&createJobFlags.name, "name", "", "Job name; the region is appended")
	createJobCmd.Flags().StringVar(&createJobFlags.bucket, "bucket", "", "Scan only this bucket")
	createJobCmd.Flags().BoolVar(&createJobFlags.weekly, "weekly", false, "Create a scheduled job running every Monday")
	createJobCmd.Flags().BoolVar(&createJobFlags.onetime, "onetime", false, "Create a one-time job")
	createJobCmd.Flags().IntVar(&createJobFlags.sample, "sample", jobs.DefaultSample, "Percentage of objects to sample (1-100)")
	createJobCmd.Flags().StringVar(&createJobFlags.description, "description", "Created by maciespectre", "Job description")
	createJobCmd.Flags().BoolVar(&createJobFlags.commit, "commit", false, "Create the jobs (default is a dry run)")
	_ = createJobCmd.MarkFlagRequired("name")
}

// jobClient is the part of a regional Macie client used to create jobs.
type jobClient interface {
	jobs.Creator
	FindBucket(ctx context.Context, name string, logger *slog.Logger) (*macie.BucketInfo, error)
}

// planJobs builds one create intent per region for public buckets, or a
// single intent in the region holding bucket. It fails when bucket is set
// and no region knows it.
func planJobs(ctx context.Context, regions []string, bucket string, build func(region string, c criteria.JobCriteria) (jobs.Spec, error), clientFor func(string) jobClient) ([]dispatch.Intent, error) {
	if bucket == "" {
		intents := make([]dispatch.Intent, 0, len(regions))
		for _, r := range regions {
			spec, err := build(r, criteria.ForJob(nil))
			if err != nil {
				return nil, err
			}
			intents = append(intents, jobs.CreateIntent{Creator: clientFor(r), Spec: spec})
		}
		return intents, nil
	}

	info, where, found, err := fanout.Until(ctx, regions, func(ctx context.Context, r string) (*macie.BucketInfo, bool, error) {
		b, err := clientFor(r).FindBucket(ctx, bucket, logger)
		return b, b != nil, err
	})
	if err != nil {
		return nil, enhanceError("bucket lookup", err, globalFlags.concurrency)
	}
	if !found {
		return nil, fmt.Errorf("bucket %s not found in any of %d regions", bucket, len(regions))
	}
	spec, err := build(where, criteria.ForJob(&criteria.BucketRef{AccountID: info.AccountID, Name: info.BucketName}))
	if err != nil {
		return nil, err
	}
	return []dispatch.Intent{jobs.CreateIntent{Creator: clientFor(where), Spec: spec}}, nil
}

func printOutcomes(w io.Writer, outcomes dispatch.Outcomes) {
	for _, o := range outcomes {
		switch {
		case o.Error != "":
			fmt.Fprintf(w, "%s %s: %s\n", color.RedString("[FAILED]"), o.Description, o.Error)
		case o.Executed:
			fmt.Fprintf(w, "%s %s %s\n", color.GreenString("[DONE]"), o.Description, o.Result)
		default:
			fmt.Fprintf(w, "%s %s\n", color.YellowString("[PLANNED]"), o.Description)
		}
	}
}

func runCreateJob(cmd *cobra.Command, args []string) error {
	jobType, err := jobs.TypeFromFlags(createJobFlags.weekly, createJobFlags.onetime)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("sample") && cfg.Sample != 0 {
		createJobFlags.sample = cfg.Sample
	}
	build := func(r string, c criteria.JobCriteria) (jobs.Spec, error) {
		return jobs.NewSpec(createJobFlags.name, createJobFlags.description, jobType, createJobFlags.sample, r, c)
	}
	// Validate before touching AWS.
	if _, err := build("", nil); err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	intents, err := planJobs(ctx, s.regions, createJobFlags.bucket, build, func(r string) jobClient { return s.clients(r) })
	if err != nil {
		return err
	}

	outcomes := dispatch.New(createJobFlags.commit, logger).Dispatch(ctx, intents...)
	printOutcomes(os.Stdout, outcomes)
	if err := outcomes.Err(); err != nil {
		return enhanceError("job creation", err, globalFlags.concurrency)
	}
	return nil
}
