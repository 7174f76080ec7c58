package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ppiankov/maciespectre/internal/awsenv"
	"github.com/ppiankov/maciespectre/internal/fanout"
	"github.com/ppiankov/maciespectre/internal/macie"
	"github.com/ppiankov/maciespectre/internal/region"
	"github.com/ppiankov/maciespectre/internal/report"
)

// enhanceError enhances an error with additional context and helpful suggestions
func enhanceError(operation string, err error, concurrency int) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s failed: operation timed out.\n"+
			"Solutions:\n"+
			"  - Raise --timeout or the timeout setting in .maciespectre.yaml\n"+
			"  - Limit the run to one region with --region\n"+
			"Original error: %w", operation, err)
	}

	// Provide helpful suggestions for common errors
	if strings.Contains(errMsg, "NoCredentialProviders") || strings.Contains(errMsg, "no valid credentials") ||
		strings.Contains(errMsg, "failed to retrieve credentials") {
		return fmt.Errorf("%s failed: No AWS credentials found.\n"+
			"Solutions:\n"+
			"  - Set AWS_PROFILE environment variable\n"+
			"  - Use --aws-profile flag\n"+
			"  - Configure AWS credentials with 'aws configure'\n"+
			"Original error: %w", operation, err)
	}

	if macie.IsAccessDenied(err) || strings.Contains(errMsg, "AccessDenied") {
		return fmt.Errorf("%s failed: Access Denied.\n"+
			"Solutions:\n"+
			"  - Run from the Macie delegated administrator account\n"+
			"  - Check IAM permissions for macie2, organizations:ListAccounts and ec2:DescribeRegions\n"+
			"  - Make sure Macie is enabled in every region processed, or pass --region\n"+
			"  - Verify the correct AWS profile is being used\n"+
			"Original error: %w", operation, err)
	}

	if macie.IsThrottled(err) || strings.Contains(errMsg, "RequestLimitExceeded") || strings.Contains(errMsg, "Throttling") {
		return fmt.Errorf("%s failed: AWS rate limit exceeded.\n"+
			"Solutions:\n"+
			"  - Reduce concurrency with --concurrency flag (current: %d)\n"+
			"  - Cap API calls with --rps\n"+
			"  - Wait a few seconds and try again\n"+
			"Original error: %w", operation, concurrency, err)
	}

	if macie.IsConflict(err) {
		return fmt.Errorf("%s failed: resource already exists or is in a conflicting state.\n"+
			"Solutions:\n"+
			"  - Check existing jobs with 'maciespectre jobs'\n"+
			"  - Use a different --name\n"+
			"Original error: %w", operation, err)
	}

	// Default error with context
	return fmt.Errorf("%s failed: %w", operation, err)
}

func selectReporter(format string, writer io.Writer) (report.Reporter, error) {
	switch format {
	case "json":
		return report.NewJSONReporter(writer), nil
	case "text", "":
		return report.NewTextReporter(writer), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: text, json)", format)
	}
}

// runContext returns the context of one command run: canceled on SIGINT
// and bounded by the configured timeout.
func runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	if globalFlags.timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, globalFlags.timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

// session is the AWS state shared by the commands of one run.
type session struct {
	env     *awsenv.Env
	regions []string
	clients macie.Factory
}

// newSession loads the AWS profile and resolves the regions to process.
func newSession(ctx context.Context) (*session, error) {
	env, err := awsenv.Load(ctx, globalFlags.awsProfile, globalFlags.region)
	if err != nil {
		return nil, enhanceError("AWS configuration", err, globalFlags.concurrency)
	}

	resolver := region.NewResolver(env.RegionCatalog())
	resolver.SetRegions(cfg.Regions)
	regions, err := resolver.Resolve(ctx, globalFlags.region)
	if err != nil {
		return nil, enhanceError("region discovery", err, globalFlags.concurrency)
	}
	logger.Debug("Resolved regions", "regions", strings.Join(regions, ","), "profile", env.Profile)

	return &session{
		env:     env,
		regions: regions,
		clients: macie.NewFactory(env.Config, macie.WithRateLimit(globalFlags.rps, 1)),
	}, nil
}

func (s *session) meta() report.Meta {
	return report.Meta{
		Tool:      "maciespectre",
		Version:   GetVersion(),
		Timestamp: time.Now(),
		Profile:   s.env.Profile,
		Regions:   s.regions,
	}
}

// regionErrors turns failed fan-out results into report entries and logs
// each one.
func regionErrors[T any](results fanout.Results[T]) []report.RegionError {
	var out []report.RegionError
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		logger.Error("Region failed", "region", r.Region, "error", r.Err)
		out = append(out, report.RegionError{Region: r.Region, Error: r.Err.Error()})
	}
	return out
}

// errRegionsFailed is returned after a report was written for a run in
// which some regions failed.
func errRegionsFailed(errs []report.RegionError) error {
	if len(errs) == 0 {
		return nil
	}
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Region)
	}
	return fmt.Errorf("%d region(s) failed: %s", len(errs), strings.Join(names, ", "))
}
