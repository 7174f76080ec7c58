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

// CreateClassificationJob submits a job. Macie runs it later.
func (c *Client) CreateClassificationJob(ctx context.Context, in *macie2.CreateClassificationJobInput) (JobRef, error) {
	if err := c.wait(ctx); err != nil {
		return JobRef{}, err
	}
	out, err := c.api.CreateClassificationJob(ctx, in)
	if err != nil {
		return JobRef{}, fmt.Errorf("create classification job %s in %s: %w", aws.ToString(in.Name), c.region, err)
	}
	return JobRef{ID: aws.ToString(out.JobId), ARN: aws.ToString(out.JobArn)}, nil
}

// ListClassificationJobs returns every job matching filter, following
// pagination to the end.
func (c *Client) ListClassificationJobs(ctx context.Context, filter *types.ListJobsFilterCriteria) ([]JobSummary, error) {
	jobs, err := paginate.CollectAll(ctx, func(ctx context.Context, cursor *string) (paginate.Page[JobSummary], error) {
		if err := c.wait(ctx); err != nil {
			return paginate.Page[JobSummary]{}, err
		}
		out, err := c.api.ListClassificationJobs(ctx, &macie2.ListClassificationJobsInput{
			FilterCriteria: filter,
			NextToken:      cursor,
		})
		if err != nil {
			return paginate.Page[JobSummary]{}, err
		}

		page := paginate.Page[JobSummary]{Next: out.NextToken}
		for _, j := range out.Items {
			page.Items = append(page.Items, c.jobSummary(j))
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list classification jobs in %s: %w", c.region, err)
	}
	return jobs, nil
}

func (c *Client) jobSummary(j types.JobSummary) JobSummary {
	s := JobSummary{
		ID:        aws.ToString(j.JobId),
		Name:      aws.ToString(j.Name),
		Region:    c.region,
		Type:      string(j.JobType),
		Status:    string(j.JobStatus),
		CreatedAt: j.CreatedAt,
		Scope:     ScopeOther,
	}
	switch {
	case criteria.IsPublicBucketCriteria(j.BucketCriteria):
		s.Scope = ScopePublicBuckets
	case len(j.BucketDefinitions) > 0:
		s.Scope = ScopeBuckets
		for _, bd := range j.BucketDefinitions {
			s.Buckets = append(s.Buckets, BucketDefinition{
				AccountID: aws.ToString(bd.AccountId),
				Buckets:   bd.Buckets,
			})
		}
	}
	return s
}
