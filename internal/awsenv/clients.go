package awsenv

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSClient is the subset of the STS API used to resolve the caller.
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// EC2RegionClient is the subset of the EC2 API used to list regions.
type EC2RegionClient interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// OrganizationsClient is the subset of the Organizations API used to read
// the account roster.
type OrganizationsClient interface {
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
}

// S3LocationClient is the subset of the S3 API used to locate a bucket.
type S3LocationClient interface {
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
}

// KMSClient is the subset of the KMS API used to check an export key.
type KMSClient interface {
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
}

// CostExplorerClient is the subset of the Cost Explorer API used to read
// billed spend.
type CostExplorerClient interface {
	GetCostAndUsage(ctx context.Context, params *ce.GetCostAndUsageInput, optFns ...func(*ce.Options)) (*ce.GetCostAndUsageOutput, error)
}

// ClientSet holds the account-level service clients. Macie clients are
// region-scoped and built separately.
type ClientSet struct {
	STS           STSClient
	EC2           EC2RegionClient
	Organizations OrganizationsClient
	S3            S3LocationClient
	KMS           KMSClient
	CostExplorer  CostExplorerClient
}

// ClientFactory builds a ClientSet from a loaded config. Tests pass a
// factory returning stubs.
type ClientFactory func(cfg aws.Config) *ClientSet

// NewClientSet creates real SDK clients. Cost Explorer is served only from
// us-east-1, so its client is pinned there.
func NewClientSet(cfg aws.Config) *ClientSet {
	ceCfg := cfg.Copy()
	ceCfg.Region = CostExplorerRegion

	return &ClientSet{
		STS:           sts.NewFromConfig(cfg),
		EC2:           ec2.NewFromConfig(cfg),
		Organizations: organizations.NewFromConfig(cfg),
		S3:            s3.NewFromConfig(cfg),
		KMS:           kms.NewFromConfig(cfg),
		CostExplorer:  ce.NewFromConfig(ceCfg),
	}
}
