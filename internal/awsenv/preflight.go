package awsenv

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ppiankov/maciespectre/internal/region"
)

// BucketRegion returns the region a bucket lives in.
func BucketRegion(ctx context.Context, client S3LocationClient, bucket string) (string, error) {
	out, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return "", fmt.Errorf("get location of bucket %s: %w", bucket, err)
	}

	// us-east-1 is reported as an empty constraint, and the legacy EU
	// constraint means eu-west-1.
	switch loc := string(out.LocationConstraint); loc {
	case "":
		return region.Preferred, nil
	case "EU":
		return "eu-west-1", nil
	default:
		return loc, nil
	}
}

// KeyInfo describes a KMS key.
type KeyInfo struct {
	ARN     string `json:"arn"`
	Region  string `json:"region"`
	State   string `json:"state"`
	Enabled bool   `json:"enabled"`
}

// DescribeKey looks up a KMS key by ARN, id or alias.
func DescribeKey(ctx context.Context, client KMSClient, keyID string) (*KeyInfo, error) {
	out, err := client.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: aws.String(keyID)})
	if err != nil {
		return nil, fmt.Errorf("describe key %s: %w", keyID, err)
	}
	if out.KeyMetadata == nil {
		return nil, fmt.Errorf("describe key %s: no key metadata returned", keyID)
	}
	md := out.KeyMetadata
	info := &KeyInfo{
		ARN:     aws.ToString(md.Arn),
		State:   string(md.KeyState),
		Enabled: md.KeyState == kmstypes.KeyStateEnabled,
	}
	info.Region = ARNRegion(info.ARN)
	return info, nil
}

// ARNRegion returns the region field of an ARN, or "" if s is not an ARN.
func ARNRegion(s string) string {
	parts := strings.SplitN(s, ":", 6)
	if len(parts) < 6 || parts[0] != "arn" {
		return ""
	}
	return parts[3]
}

// ExportCheck is the result of checking an export destination.
type ExportCheck struct {
	Bucket       string   `json:"bucket"`
	BucketRegion string   `json:"bucket_region"`
	Key          *KeyInfo `json:"key"`
	Problems     []string `json:"problems,omitempty"`
}

// OK reports whether no problems were found.
func (c ExportCheck) OK() bool {
	return len(c.Problems) == 0
}

// CheckExportDestination verifies that bucket exists and that keyARN names
// an enabled key in the bucket's region. Remote failures are returned as
// errors; configuration mismatches are reported as Problems.
func CheckExportDestination(ctx context.Context, s3c S3LocationClient, kmsFor func(region string) KMSClient, bucket, keyARN string) (*ExportCheck, error) {
	bucketRegion, err := BucketRegion(ctx, s3c, bucket)
	if err != nil {
		return nil, err
	}
	check := &ExportCheck{Bucket: bucket, BucketRegion: bucketRegion}

	keyRegion := ARNRegion(keyARN)
	if keyRegion == "" {
		check.Problems = append(check.Problems, fmt.Sprintf("KMS key %q is not a key ARN", keyARN))
		return check, nil
	}
	key, err := DescribeKey(ctx, kmsFor(keyRegion), keyARN)
	if err != nil {
		return nil, err
	}
	check.Key = key

	if !key.Enabled {
		check.Problems = append(check.Problems, fmt.Sprintf("KMS key is in state %s", key.State))
	}
	if key.Region != bucketRegion {
		check.Problems = append(check.Problems,
			fmt.Sprintf("KMS key region %s does not match bucket region %s", key.Region, bucketRegion))
	}
	return check, nil
}
