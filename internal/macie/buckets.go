package macie

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/macie2/types"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/paginate"
)

// DescribeBuckets returns every bucket in Macie's inventory that matches
// the given criteria. A nil criteria map returns the full inventory.
func (c *Client) DescribeBuckets(ctx context.Context, filter map[string]types.BucketCriteriaAdditionalProperties) ([]BucketInfo, error) {
	buckets, err := paginate.CollectAll(ctx, func(ctx context.Context, cursor *string) (paginate.Page[BucketInfo], error) {
		if err := c.wait(ctx); err != nil {
			return paginate.Page[BucketInfo]{}, err
		}
		out, err := c.api.DescribeBuckets(ctx, &macie2.DescribeBucketsInput{
			Criteria:  filter,
			NextToken: cursor,
		})
		if err != nil {
			return paginate.Page[BucketInfo]{}, err
		}

		page := paginate.Page[BucketInfo]{Next: out.NextToken}
		for _, b := range out.Buckets {
			page.Items = append(page.Items, c.bucketInfo(b))
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("describe buckets in %s: %w", c.region, err)
	}
	return buckets, nil
}

// PublicBuckets returns the buckets whose effective permission is PUBLIC.
func (c *Client) PublicBuckets(ctx context.Context) ([]BucketInfo, error) {
	return c.DescribeBuckets(ctx, criteria.PublicBucketFilter())
}

// FindBucket looks up one bucket by name. It returns (nil, nil) when the
// bucket is not in this region's inventory. When Macie reports the name
// more than once, a warning is logged and the first entry wins.
func (c *Client) FindBucket(ctx context.Context, name string, logger *slog.Logger) (*BucketInfo, error) {
	buckets, err := c.DescribeBuckets(ctx, criteria.BucketLookup(name))
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return nil, nil
	}
	if len(buckets) > 1 && logger != nil {
		logger.Warn("Bucket name reported more than once, using the first entry",
			slog.String("bucket", name),
			slog.String("region", c.region),
			slog.Int("entries", len(buckets)))
	}
	b := buckets[0]
	return &b, nil
}

func (c *Client) bucketInfo(b types.BucketMetadata) BucketInfo {
	info := BucketInfo{
		BucketName:              aws.ToString(b.BucketName),
		AccountID:               aws.ToString(b.AccountId),
		Region:                  aws.ToString(b.Region),
		ClassifiableSizeInBytes: aws.ToInt64(b.ClassifiableSizeInBytes),
		ClassifiableObjectCount: aws.ToInt64(b.ClassifiableObjectCount),
	}
	if info.Region == "" {
		info.Region = c.region
	}
	return info
}
