package criteria

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2/types"
)

// Macie criterion keys.
const (
	CategoryClassification = "CLASSIFICATION"

	keyCategory         = "category"
	keySeverity         = "severity.description"
	keyBucketName       = "resourcesAffected.s3Bucket.name"
	keyLookupBucketName = "bucketName"
	keyEffectivePerm    = "publicAccess.effectivePermission"
	effectivePermPublic = "PUBLIC"
)

// BucketRef names a bucket under its owning account.
type BucketRef struct {
	AccountID string
	Name      string
}

// JobCriteria selects the buckets a classification job scans. It is either
// PublicBuckets or SingleBucket, never both.
type JobCriteria interface {
	// S3JobDefinition renders the criteria in Macie's job shape.
	S3JobDefinition() *types.S3JobDefinition
	isJobCriteria()
}

// PublicBuckets targets every bucket whose effective permission is PUBLIC.
type PublicBuckets struct{}

// SingleBucket targets one named bucket.
type SingleBucket struct {
	AccountID  string
	BucketName string
}

func (PublicBuckets) isJobCriteria() {}
func (SingleBucket) isJobCriteria()  {}

// S3JobDefinition returns an AND of the single effective-permission predicate.
func (PublicBuckets) S3JobDefinition() *types.S3JobDefinition {
	return &types.S3JobDefinition{
		BucketCriteria: PublicBucketCriteria(),
	}
}

// S3JobDefinition returns an explicit bucket definition.
func (s SingleBucket) S3JobDefinition() *types.S3JobDefinition {
	return &types.S3JobDefinition{
		BucketDefinitions: []types.S3BucketDefinitionForJob{
			{
				AccountId: aws.String(s.AccountID),
				Buckets:   []string{s.BucketName},
			},
		},
	}
}

// PublicBucketCriteria is the job bucket criteria for all public buckets.
// It is also used to recognise public-bucket jobs when listing.
func PublicBucketCriteria() *types.S3BucketCriteriaForJob {
	return &types.S3BucketCriteriaForJob{
		Includes: &types.CriteriaBlockForJob{
			And: []types.CriteriaForJob{
				{
					SimpleCriterion: &types.SimpleCriterionForJob{
						Comparator: types.JobComparatorEq,
						Key:        types.SimpleCriterionKeyForJobS3BucketEffectivePermission,
						Values:     []string{effectivePermPublic},
					},
				},
			},
		},
	}
}

// IsPublicBucketCriteria reports whether c has exactly the public-bucket shape.
func IsPublicBucketCriteria(c *types.S3BucketCriteriaForJob) bool {
	if c == nil || c.Excludes != nil || c.Includes == nil || len(c.Includes.And) != 1 {
		return false
	}
	sc := c.Includes.And[0].SimpleCriterion
	if sc == nil || c.Includes.And[0].TagCriterion != nil {
		return false
	}
	return sc.Comparator == types.JobComparatorEq &&
		sc.Key == types.SimpleCriterionKeyForJobS3BucketEffectivePermission &&
		len(sc.Values) == 1 && sc.Values[0] == effectivePermPublic
}

// ForJob returns PublicBuckets when bucket is nil and SingleBucket otherwise.
// One-time and scheduled jobs both target through this function.
func ForJob(bucket *BucketRef) JobCriteria {
	if bucket == nil {
		return PublicBuckets{}
	}
	return SingleBucket{AccountID: bucket.AccountID, BucketName: bucket.Name}
}

// BucketLookup is the DescribeBuckets criteria for a bucket name.
func BucketLookup(name string) map[string]types.BucketCriteriaAdditionalProperties {
	return map[string]types.BucketCriteriaAdditionalProperties{
		keyLookupBucketName: {Eq: []string{name}},
	}
}

// PublicBucketFilter is the DescribeBuckets criteria for public buckets.
func PublicBucketFilter() map[string]types.BucketCriteriaAdditionalProperties {
	return map[string]types.BucketCriteriaAdditionalProperties{
		keyEffectivePerm: {Eq: []string{effectivePermPublic}},
	}
}
