package macie

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"golang.org/x/time/rate"
)

// API is the subset of the Macie API used by this tool. *macie2.Client
// satisfies it; tests substitute a stub.
type API interface {
	DescribeBuckets(ctx context.Context, params *macie2.DescribeBucketsInput, optFns ...func(*macie2.Options)) (*macie2.DescribeBucketsOutput, error)
	ListFindings(ctx context.Context, params *macie2.ListFindingsInput, optFns ...func(*macie2.Options)) (*macie2.ListFindingsOutput, error)
	GetFindings(ctx context.Context, params *macie2.GetFindingsInput, optFns ...func(*macie2.Options)) (*macie2.GetFindingsOutput, error)
	GetFindingStatistics(ctx context.Context, params *macie2.GetFindingStatisticsInput, optFns ...func(*macie2.Options)) (*macie2.GetFindingStatisticsOutput, error)
	CreateClassificationJob(ctx context.Context, params *macie2.CreateClassificationJobInput, optFns ...func(*macie2.Options)) (*macie2.CreateClassificationJobOutput, error)
	ListClassificationJobs(ctx context.Context, params *macie2.ListClassificationJobsInput, optFns ...func(*macie2.Options)) (*macie2.ListClassificationJobsOutput, error)
	ListMembers(ctx context.Context, params *macie2.ListMembersInput, optFns ...func(*macie2.Options)) (*macie2.ListMembersOutput, error)
	CreateMember(ctx context.Context, params *macie2.CreateMemberInput, optFns ...func(*macie2.Options)) (*macie2.CreateMemberOutput, error)
	GetUsageTotals(ctx context.Context, params *macie2.GetUsageTotalsInput, optFns ...func(*macie2.Options)) (*macie2.GetUsageTotalsOutput, error)
	DescribeOrganizationConfiguration(ctx context.Context, params *macie2.DescribeOrganizationConfigurationInput, optFns ...func(*macie2.Options)) (*macie2.DescribeOrganizationConfigurationOutput, error)
	UpdateOrganizationConfiguration(ctx context.Context, params *macie2.UpdateOrganizationConfigurationInput, optFns ...func(*macie2.Options)) (*macie2.UpdateOrganizationConfigurationOutput, error)
	PutClassificationExportConfiguration(ctx context.Context, params *macie2.PutClassificationExportConfigurationInput, optFns ...func(*macie2.Options)) (*macie2.PutClassificationExportConfigurationOutput, error)
}

// Client is a Macie client bound to one region
type Client struct {
	api     API
	region  string
	limiter *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithRateLimit caps outbound calls at rps requests per second. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClientForRegion creates a Macie client for a specific region
func NewClientForRegion(baseConfig aws.Config, region string, opts ...Option) *Client {
	cfg := baseConfig.Copy()
	cfg.Region = region

	return NewFromAPI(macie2.NewFromConfig(cfg), region, opts...)
}

// NewFromAPI wraps an existing API implementation.
func NewFromAPI(api API, region string, opts ...Option) *Client {
	c := &Client{api: api, region: region}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Region returns the region the client is bound to
func (c *Client) Region() string {
	return c.region
}

// wait blocks until the limiter admits one more call.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Factory builds region-scoped clients from one base config.
type Factory func(region string) *Client

// NewFactory returns a Factory sharing cfg and opts across regions.
func NewFactory(cfg aws.Config, opts ...Option) Factory {
	return func(region string) *Client {
		return NewClientForRegion(cfg, region, opts...)
	}
}
