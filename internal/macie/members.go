package macie

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/macie2/types"

	"github.com/ppiankov/maciespectre/internal/paginate"
)

// MemberPageSize is the page size used when listing members.
const MemberPageSize = 50

// ListMembers returns every member account of this administrator in the
// client's region, regardless of relationship status.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	members, err := paginate.CollectAll(ctx, func(ctx context.Context, cursor *string) (paginate.Page[Member], error) {
		if err := c.wait(ctx); err != nil {
			return paginate.Page[Member]{}, err
		}
		out, err := c.api.ListMembers(ctx, &macie2.ListMembersInput{
			MaxResults: aws.Int32(MemberPageSize),
			NextToken:  cursor,
		})
		if err != nil {
			return paginate.Page[Member]{}, err
		}

		page := paginate.Page[Member]{Next: out.NextToken}
		for _, m := range out.Members {
			page.Items = append(page.Items, Member{
				AccountID:          aws.ToString(m.AccountId),
				Email:              aws.ToString(m.Email),
				RelationshipStatus: string(m.RelationshipStatus),
			})
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list members in %s: %w", c.region, err)
	}
	return members, nil
}

// CreateMember associates an account with the administrator account.
// It returns the member ARN.
func (c *Client) CreateMember(ctx context.Context, accountID, email string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	out, err := c.api.CreateMember(ctx, &macie2.CreateMemberInput{
		Account: &types.AccountDetail{
			AccountId: aws.String(accountID),
			Email:     aws.String(email),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create member %s in %s: %w", accountID, c.region, err)
	}
	return aws.ToString(out.Arn), nil
}

// AutoEnabled reports whether new organization accounts are enrolled
// automatically in this region.
func (c *Client) AutoEnabled(ctx context.Context) (bool, error) {
	if err := c.wait(ctx); err != nil {
		return false, err
	}
	out, err := c.api.DescribeOrganizationConfiguration(ctx, &macie2.DescribeOrganizationConfigurationInput{})
	if err != nil {
		return false, fmt.Errorf("describe organization configuration in %s: %w", c.region, err)
	}
	return aws.ToBool(out.AutoEnable), nil
}

// SetAutoEnable turns automatic enrollment of new accounts on or off.
func (c *Client) SetAutoEnable(ctx context.Context, enabled bool) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.api.UpdateOrganizationConfiguration(ctx, &macie2.UpdateOrganizationConfigurationInput{
		AutoEnable: aws.Bool(enabled),
	})
	if err != nil {
		return fmt.Errorf("update organization configuration in %s: %w", c.region, err)
	}
	return nil
}

// PutExportConfiguration points classification results at dest.
func (c *Client) PutExportConfiguration(ctx context.Context, dest ExportDestination) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.api.PutClassificationExportConfiguration(ctx, &macie2.PutClassificationExportConfigurationInput{
		Configuration: &types.ClassificationExportConfiguration{
			S3Destination: &types.S3Destination{
				BucketName: aws.String(dest.BucketName),
				KeyPrefix:  aws.String(dest.KeyPrefix),
				KmsKeyArn:  aws.String(dest.KMSKeyARN),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put export configuration in %s: %w", c.region, err)
	}
	return nil
}
