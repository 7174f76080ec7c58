package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolateHome keeps a developer's own config file out of the tests.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_NoFile(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Region != "" {
		t.Fatalf("expected empty region, got %q", cfg.Region)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	content := `region: us-west-2
regions:
  - us-east-1
  - eu-west-1
profile: audit
sample: 20
concurrency: 4
rps: 2.5
format: json
timeout: 5m
severity: High
export_bucket: macie-results
kms_key: arn:aws:kms:us-east-1:111122223333:key/abcd
accounts:
  - "111111111111"
  - "222222222222"
`
	if err := os.WriteFile(filepath.Join(dir, ".maciespectre.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Region != "us-west-2" || cfg.Profile != "audit" {
		t.Fatalf("unexpected region/profile: %+v", cfg)
	}
	if len(cfg.Regions) != 2 || cfg.Regions[1] != "eu-west-1" {
		t.Fatalf("expected 2 regions, got %v", cfg.Regions)
	}
	if cfg.Sample != 20 || cfg.Concurrency != 4 || cfg.RPS != 2.5 {
		t.Fatalf("unexpected numeric fields: %+v", cfg)
	}
	if cfg.Format != "json" || cfg.Severity != "High" {
		t.Fatalf("unexpected format/severity: %+v", cfg)
	}
	if cfg.ExportBucket != "macie-results" || cfg.KMSKey == "" {
		t.Fatalf("unexpected export settings: %+v", cfg)
	}
	set := cfg.AccountSet()
	if _, ok := set["222222222222"]; !ok || len(set) != 2 {
		t.Fatalf("unexpected account set %v", set)
	}
}

func TestLoad_YMLExtension(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	content := `region: eu-west-1`
	if err := os.WriteFile(filepath.Join(dir, ".maciespectre.yml"), []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Region != "eu-west-1" {
		t.Fatalf("expected region eu-west-1, got %q", cfg.Region)
	}
}

func TestLoad_YAMLTakesPrecedence(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".maciespectre.yaml"), []byte("region: first"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".maciespectre.yml"), []byte("region: second"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Region != "first" {
		t.Fatalf("expected .yaml to take precedence, got %q", cfg.Region)
	}
}

func TestLoad_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".maciespectre.yaml"), []byte("profile: home"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Profile != "home" {
		t.Fatalf("expected home config, got %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".maciespectre.yaml"), []byte(":::invalid"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	isolateHome(t)
	for _, content := range []string{"sample: 150", "concurrency: -1", "rps: -2", "timeout: soon"} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".maciespectre.yaml"), []byte(content), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatalf("expected %q to be rejected", content)
		}
	}
}

func TestTimeoutDuration(t *testing.T) {
	cfg := Config{Timeout: "5m"}
	if cfg.TimeoutDuration() != 5*time.Minute {
		t.Fatalf("expected 5m, got %v", cfg.TimeoutDuration())
	}

	cfg.Timeout = ""
	if cfg.TimeoutDuration() != 0 {
		t.Fatalf("expected 0 for empty, got %v", cfg.TimeoutDuration())
	}

	cfg.Timeout = "invalid"
	if cfg.TimeoutDuration() != 0 {
		t.Fatalf("expected 0 for invalid, got %v", cfg.TimeoutDuration())
	}
}

func TestAccountSet_EmptyAllowsAll(t *testing.T) {
	cfg := Config{}
	if cfg.AccountSet() != nil {
		t.Fatalf("expected nil set when no accounts are configured")
	}
}
