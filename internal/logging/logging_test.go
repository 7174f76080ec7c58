package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewDefaultLevelInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&buf, false, false)
	logger.Debug("debug")
	logger.Info("info")

	output := buf.String()
	if strings.Contains(output, "msg=debug") {
		t.Fatalf("expected debug to be suppressed, got %q", output)
	}
	if !strings.Contains(output, "msg=info") {
		t.Fatalf("expected info to be logged, got %q", output)
	}
}

func TestNewVerboseLevelDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&buf, true, false)
	logger.Debug("debug")

	if !strings.Contains(buf.String(), "msg=debug") {
		t.Fatalf("expected debug to be logged, got %q", buf.String())
	}
}

func TestNewQuietErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&buf, true, true)
	logger.Warn("warn")
	logger.Error("error")

	output := buf.String()
	if strings.Contains(output, "msg=warn") {
		t.Fatalf("expected warn to be suppressed, got %q", output)
	}
	if !strings.Contains(output, "msg=error") {
		t.Fatalf("expected error to be logged, got %q", output)
	}
}

func TestNewTagsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, runID := New(&buf, false, false)
	logger.Info("hello")

	if len(runID) != 36 {
		t.Fatalf("expected a UUID run id, got %q", runID)
	}
	if !strings.Contains(buf.String(), "run="+runID[:8]) {
		t.Fatalf("expected run id on every record, got %q", buf.String())
	}

	_, other := New(&buf, false, false)
	if other == runID {
		t.Fatalf("expected a fresh run id per logger")
	}
}

func TestLevel(t *testing.T) {
	if Level(false, false) != slog.LevelInfo || Level(true, false) != slog.LevelDebug || Level(false, true) != slog.LevelError {
		t.Fatalf("unexpected level mapping")
	}
}
