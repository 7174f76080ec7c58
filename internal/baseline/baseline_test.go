package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/maciespectre/internal/findings"
)

func TestKey(t *testing.T) {
	withID := findings.Record{ID: "abc", BucketName: "b", ObjectKey: "k"}
	if Key(withID) != "abc" {
		t.Fatalf("expected id key, got %q", Key(withID))
	}
	a := findings.Record{AccountID: "1", BucketName: "b", ObjectKey: "k", FindingType: "SensitiveData:S3Object/Personal"}
	b := a
	b.FindingType = "SensitiveData:S3Object/Financial"
	if Key(a) == Key(b) {
		t.Fatalf("expected finding type to be part of the fallback key")
	}
}

func TestDiff_AllStatuses(t *testing.T) {
	baseline := []findings.Record{
		{ID: "kept-1", BucketName: "payroll"},
		{ID: "kept-2", BucketName: "shared"},
		{ID: "gone", BucketName: "archive"},
	}
	current := []findings.Record{
		{ID: "kept-1", BucketName: "payroll"},
		{ID: "fresh", BucketName: "uploads"},
		{ID: "kept-2", BucketName: "shared"},
	}

	result := Diff(current, baseline)

	if len(result.New) != 1 || result.New[0].ID != "fresh" {
		t.Errorf("expected 1 new finding (fresh), got %+v", result.New)
	}
	if len(result.Resolved) != 1 || result.Resolved[0].ID != "gone" {
		t.Errorf("expected 1 resolved finding (gone), got %+v", result.Resolved)
	}
	if result.Unchanged != 2 {
		t.Errorf("expected 2 unchanged findings, got %d", result.Unchanged)
	}
	if !result.Changed() {
		t.Errorf("expected diff to report a change")
	}
}

func TestDiff_EmptyBaseline(t *testing.T) {
	current := []findings.Record{{ID: "a"}}
	result := Diff(current, nil)
	if len(result.New) != 1 {
		t.Errorf("expected 1 new, got %d", len(result.New))
	}
	if len(result.Resolved) != 0 {
		t.Errorf("expected 0 resolved, got %d", len(result.Resolved))
	}
}

func TestDiff_EmptyCurrent(t *testing.T) {
	baseline := []findings.Record{{ID: "a"}}
	result := Diff(nil, baseline)
	if len(result.Resolved) != 1 {
		t.Errorf("expected 1 resolved, got %d", len(result.Resolved))
	}
	if len(result.New) != 0 {
		t.Errorf("expected 0 new, got %d", len(result.New))
	}
}

func TestDiff_Identical(t *testing.T) {
	records := []findings.Record{{ID: "a"}, {ID: "b"}}
	result := Diff(records, records)
	if result.Changed() || result.Unchanged != 2 {
		t.Errorf("expected no change, got %+v", result)
	}
}

func TestLoad(t *testing.T) {
	raw := `{"tool":"maciespectre","records":[{"id":"f-1","bucket_name":"payroll","severity":"High"}],"tally":{"High":1}}`
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.json")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "f-1" || records[0].Severity != "High" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/path")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{invalid"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
