package awsenv

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ppiankov/maciespectre/internal/region"
)

// CostExplorerRegion is the only region serving the Cost Explorer API.
const CostExplorerRegion = "us-east-1"

// Env is a loaded AWS environment: SDK config, the caller's account and
// the account-level clients.
type Env struct {
	Profile   string
	AccountID string
	Config    aws.Config
	Clients   *ClientSet
}

// Load loads the SDK config for profile. region overrides the profile's
// region; when neither is set the preferred region is used so that every
// client can be constructed.
func Load(ctx context.Context, profile, regionOverride string) (*Env, error) {
	return LoadWithFactory(ctx, profile, regionOverride, NewClientSet)
}

// LoadWithFactory is Load with an injectable client factory.
func LoadWithFactory(ctx context.Context, profile, regionOverride string, factory ClientFactory) (*Env, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if regionOverride != "" {
		opts = append(opts, awsconfig.WithRegion(regionOverride))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", ProfileDisplayName(profile), err)
	}
	if cfg.Region == "" {
		cfg.Region = region.Preferred
	}

	return &Env{
		Profile: ProfileDisplayName(profile),
		Config:  cfg,
		Clients: factory(cfg),
	}, nil
}

// ResolveAccount fills AccountID from STS. Commands that never need the
// caller's identity skip this call.
func (e *Env) ResolveAccount(ctx context.Context) (string, error) {
	if e.AccountID != "" {
		return e.AccountID, nil
	}
	id, err := CallerAccountID(ctx, e.Clients.STS)
	if err != nil {
		return "", fmt.Errorf("resolve account ID for profile %q: %w", e.Profile, err)
	}
	e.AccountID = id
	return id, nil
}

// KMSFor returns a KMS client for region. Keys are regional, so an export
// key must be described where it lives.
func (e *Env) KMSFor(keyRegion string) KMSClient {
	if keyRegion == "" || keyRegion == e.Config.Region {
		return e.Clients.KMS
	}
	cfg := e.Config.Copy()
	cfg.Region = keyRegion
	return kms.NewFromConfig(cfg)
}

// RegionCatalog returns the enabled-region catalog backed by EC2.
func (e *Env) RegionCatalog() *RegionCatalog {
	return &RegionCatalog{client: e.Clients.EC2}
}

// ProfileDisplayName shows the default profile as "default".
func ProfileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// CallerAccountID returns the numeric account ID of the loaded credentials.
func CallerAccountID(ctx context.Context, client STSClient) (string, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}

// RegionCatalog lists the regions enabled for the account.
type RegionCatalog struct {
	client EC2RegionClient
}

// NewRegionCatalog wraps an EC2 client.
func NewRegionCatalog(client EC2RegionClient) *RegionCatalog {
	return &RegionCatalog{client: client}
}

// ListRegions returns enabled regions in the order EC2 reports them.
func (c *RegionCatalog) ListRegions(ctx context.Context) ([]string, error) {
	out, err := c.client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe regions: %w", err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if r.RegionName != nil {
			regions = append(regions, *r.RegionName)
		}
	}
	return regions, nil
}
