package macie

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/macie2/types"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/paginate"
)

// MaxGetFindings is the largest id batch GetFindings accepts.
const MaxGetFindings = 50

// StatisticsGroupSize is the number of groups requested from
// GetFindingStatistics.
const StatisticsGroupSize = 5000

// ListFindingIDs returns one page of finding ids matching fc.
func (c *Client) ListFindingIDs(ctx context.Context, fc criteria.FindingCriteria, pageSize int32, cursor *string) (paginate.Page[string], error) {
	if err := c.wait(ctx); err != nil {
		return paginate.Page[string]{}, err
	}
	in := &macie2.ListFindingsInput{
		FindingCriteria: fc.Macie(),
		NextToken:       cursor,
	}
	if pageSize > 0 {
		in.MaxResults = aws.Int32(pageSize)
	}
	out, err := c.api.ListFindings(ctx, in)
	if err != nil {
		return paginate.Page[string]{}, fmt.Errorf("list findings in %s: %w", c.region, err)
	}
	return paginate.Page[string]{Items: out.FindingIds, Next: out.NextToken}, nil
}

// GetFindings fetches the details for ids, in batches of at most
// MaxGetFindings, preserving the order Macie returns within each batch.
func (c *Client) GetFindings(ctx context.Context, ids []string) ([]Finding, error) {
	var findings []Finding
	for start := 0; start < len(ids); start += MaxGetFindings {
		end := min(start+MaxGetFindings, len(ids))
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		out, err := c.api.GetFindings(ctx, &macie2.GetFindingsInput{FindingIds: ids[start:end]})
		if err != nil {
			return nil, fmt.Errorf("get findings in %s: %w", c.region, err)
		}
		for _, f := range out.Findings {
			findings = append(findings, c.finding(f))
		}
	}
	return findings, nil
}

// FindingStatistics counts findings matching fc per bucket.
func (c *Client) FindingStatistics(ctx context.Context, fc criteria.FindingCriteria) ([]BucketFindingCount, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	out, err := c.api.GetFindingStatistics(ctx, &macie2.GetFindingStatisticsInput{
		FindingCriteria: fc.Macie(),
		GroupBy:         types.GroupByResourcesAffectedS3BucketName,
		Size:            aws.Int32(StatisticsGroupSize),
	})
	if err != nil {
		return nil, fmt.Errorf("get finding statistics in %s: %w", c.region, err)
	}

	counts := make([]BucketFindingCount, 0, len(out.CountsByGroup))
	for _, g := range out.CountsByGroup {
		counts = append(counts, BucketFindingCount{
			BucketName: aws.ToString(g.GroupKey),
			Region:     c.region,
			Count:      aws.ToInt64(g.Count),
		})
	}
	return counts, nil
}

func (c *Client) finding(f types.Finding) Finding {
	out := Finding{
		ID:        aws.ToString(f.Id),
		AccountID: aws.ToString(f.AccountId),
		Region:    aws.ToString(f.Region),
		Category:  string(f.Category),
		Type:      string(f.Type),
	}
	if out.Region == "" {
		out.Region = c.region
	}
	if f.Severity != nil {
		out.Severity = string(f.Severity.Description)
	}
	if ra := f.ResourcesAffected; ra != nil {
		if ra.S3Bucket != nil {
			out.BucketName = aws.ToString(ra.S3Bucket.Name)
		}
		if ra.S3Object != nil {
			out.ObjectKey = aws.ToString(ra.S3Object.Key)
			out.Extension = aws.ToString(ra.S3Object.Extension)
		}
	}
	if cd := f.ClassificationDetails; cd != nil && cd.Result != nil {
		for _, item := range cd.Result.SensitiveData {
			out.SensitiveData = append(out.SensitiveData, SensitiveDataCount{
				Category: string(item.Category),
				Count:    aws.ToInt64(item.TotalCount),
			})
		}
	}
	return out
}
