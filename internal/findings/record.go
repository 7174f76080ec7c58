package findings

import (
	"fmt"
	"strconv"

	"github.com/ppiankov/maciespectre/internal/macie"
)

// Header is the column order of an exported findings file.
var Header = []string{
	"AccountId", "BucketName", "Region", "FileExtension", "Severity", "FindingType",
	"FindingCount", "Details", "ObjectKey", "S3Path", "URLPath", "FindingConsoleURL",
}

// Record is one exported finding.
type Record struct {
	ID                string `json:"id"`
	AccountID         string `json:"account_id"`
	BucketName        string `json:"bucket_name"`
	Region            string `json:"region"`
	FileExtension     string `json:"file_extension"`
	Severity          string `json:"severity"`
	FindingType       string `json:"finding_type"`
	FindingCount      int64  `json:"finding_count"`
	Details           string `json:"details"`
	ObjectKey         string `json:"object_key"`
	S3Path            string `json:"s3_path"`
	URLPath           string `json:"url_path"`
	FindingConsoleURL string `json:"finding_console_url"`
}

// NewRecord flattens a finding into an export record.
func NewRecord(f macie.Finding) Record {
	details, count := Summarize(f)
	return Record{
		ID:                f.ID,
		AccountID:         f.AccountID,
		BucketName:        f.BucketName,
		Region:            f.Region,
		FileExtension:     f.Extension,
		Severity:          f.Severity,
		FindingType:       f.Type,
		FindingCount:      count,
		Details:           details,
		ObjectKey:         f.ObjectKey,
		S3Path:            fmt.Sprintf("s3://%s/%s", f.BucketName, f.ObjectKey),
		URLPath:           fmt.Sprintf("https://%s.s3.amazonaws.com/%s", f.BucketName, f.ObjectKey),
		FindingConsoleURL: ConsoleURL(f.Region, f.BucketName, f.ID),
	}
}

// Row returns the record in Header order.
func (r Record) Row() []string {
	return []string{
		r.AccountID, r.BucketName, r.Region, r.FileExtension, r.Severity, r.FindingType,
		strconv.FormatInt(r.FindingCount, 10), r.Details, r.ObjectKey, r.S3Path, r.URLPath, r.FindingConsoleURL,
	}
}

// ConsoleURL links to the finding in the Macie console, pre-filtered to
// its bucket.
func ConsoleURL(region, bucket, id string) string {
	return fmt.Sprintf("https://%[1]s.console.aws.amazon.com/macie/home?region=%[1]s#findings?search=resourcesAffected.s3Bucket.name%%3D%[2]s&macros=current&itemId=%[3]s",
		region, bucket, id)
}
