package macie

import "time"

// BucketInfo contains the Macie inventory entry for a bucket
type BucketInfo struct {
	BucketName              string `json:"bucket_name"`
	AccountID               string `json:"account_id"`
	Region                  string `json:"region"`
	ClassifiableSizeInBytes int64  `json:"classifiable_size_in_bytes"`
	ClassifiableObjectCount int64  `json:"classifiable_object_count"`
}

// Finding is a sensitive-data finding with its classification detail
type Finding struct {
	ID            string               `json:"id"`
	AccountID     string               `json:"account_id"`
	Region        string               `json:"region"`
	Category      string               `json:"category"`
	BucketName    string               `json:"bucket_name"`
	ObjectKey     string               `json:"object_key"`
	Extension     string               `json:"extension,omitempty"`
	Severity      string               `json:"severity"` // Low, Medium, High as returned by the API
	Type          string               `json:"type"`
	SensitiveData []SensitiveDataCount `json:"sensitive_data,omitempty"`
}

// SensitiveDataCount is the number of detections for one data category
type SensitiveDataCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Member is an account enrolled under the administrator account in one region
type Member struct {
	AccountID          string `json:"account_id"`
	Email              string `json:"email,omitempty"`
	RelationshipStatus string `json:"relationship_status"`
}

// RelationshipEnabled is the status of a fully enrolled member.
const RelationshipEnabled = "Enabled"

// UsageTotal is one line of Macie's estimated usage cost
type UsageTotal struct {
	Type          string `json:"type"`
	EstimatedCost string `json:"estimated_cost"`
	Currency      string `json:"currency,omitempty"`
}

// UsageTypeSensitiveDataDiscovery is the usage line billed for classification jobs.
const UsageTypeSensitiveDataDiscovery = "SENSITIVE_DATA_DISCOVERY"

// JobRef identifies a created classification job
type JobRef struct {
	ID  string `json:"job_id"`
	ARN string `json:"job_arn"`
}

// JobScope describes what a listed job scans
type JobScope string

const (
	ScopePublicBuckets JobScope = "PUBLIC_BUCKETS"
	ScopeBuckets       JobScope = "BUCKETS"
	ScopeOther         JobScope = "OTHER"
)

// JobSummary is a listed classification job
type JobSummary struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Region    string             `json:"region"`
	Type      string             `json:"type"`
	Status    string             `json:"status"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
	Scope     JobScope           `json:"scope"`
	Buckets   []BucketDefinition `json:"buckets,omitempty"`
}

// BucketDefinition lists buckets of one account targeted by a job
type BucketDefinition struct {
	AccountID string   `json:"account_id"`
	Buckets   []string `json:"buckets"`
}

// BucketFindingCount is the number of findings grouped under one bucket
type BucketFindingCount struct {
	BucketName string `json:"bucket_name"`
	Region     string `json:"region"`
	Count      int64  `json:"count"`
}

// ExportDestination is where Macie writes classification results
type ExportDestination struct {
	BucketName string `json:"bucket_name"`
	KeyPrefix  string `json:"key_prefix"`
	KMSKeyARN  string `json:"kms_key_arn"`
}
