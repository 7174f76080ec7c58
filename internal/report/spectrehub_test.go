package report

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSpectreHubReporter_Generate(t *testing.T) {
	var buf bytes.Buffer
	r := NewSpectreHubReporter(&buf)
	if err := r.Generate(testMeta(), testRecords()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var envelope spectreEnvelope
	if err := json.Unmarshal(buf.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if envelope.Schema != "spectre/v1" {
		t.Errorf("schema = %q, want spectre/v1", envelope.Schema)
	}
	if envelope.Tool != "maciespectre" {
		t.Errorf("tool = %q, want maciespectre", envelope.Tool)
	}
	if envelope.Target.Type != "macie" {
		t.Errorf("target.type = %q, want macie", envelope.Target.Type)
	}
	if envelope.Timestamp != "2026-03-04T05:06:07Z" {
		t.Errorf("timestamp = %q", envelope.Timestamp)
	}
	if envelope.Summary.Total != 2 || envelope.Summary.High != 1 || envelope.Summary.Low != 1 {
		t.Errorf("summary = %+v, want total 2 high 1 low 1", envelope.Summary)
	}

	first := envelope.Findings[0]
	if first.ID != "SensitiveData:S3Object/Personal" || first.Severity != "high" {
		t.Errorf("unexpected first finding %+v", first)
	}
	if first.Location != "s3://payroll/2026/q1.csv" || first.Message != "NAME: 10; ADDRESS: 2" {
		t.Errorf("unexpected location/message %+v", first)
	}
	if first.Metadata["finding_id"] != "f-1" {
		t.Errorf("expected finding id metadata, got %v", first.Metadata)
	}
}

func TestSpectreHubReporter_EmptyFindings(t *testing.T) {
	var buf bytes.Buffer
	r := NewSpectreHubReporter(&buf)
	if err := r.Generate(testMeta(), nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var envelope spectreEnvelope
	if err := json.Unmarshal(buf.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if envelope.Findings == nil {
		t.Fatal("findings should be empty array, not null")
	}
	if len(envelope.Findings) != 0 {
		t.Errorf("findings count = %d, want 0", len(envelope.Findings))
	}
}

func TestHashTarget(t *testing.T) {
	h1 := HashTarget([]string{"us-east-1"}, "default")
	h2 := HashTarget([]string{"us-east-1"}, "default")
	if h1 != h2 {
		t.Errorf("same inputs should produce same hash: %s != %s", h1, h2)
	}

	h3 := HashTarget([]string{"eu-west-1"}, "default")
	if h1 == h3 {
		t.Errorf("different regions should produce different hashes")
	}

	if len(h1) < 10 || h1[:7] != "sha256:" {
		t.Errorf("hash should start with sha256:, got %q", h1)
	}
}
