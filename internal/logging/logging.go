package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Level picks the log level for the verbosity flags. Quiet wins over
// verbose.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New builds the logger for one run. Every record carries the run id so
// that interleaved output from concurrent regions can be traced back to
// one invocation.
func New(w io.Writer, verbose, quiet bool) (*slog.Logger, string) {
	runID := uuid.NewString()
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level(verbose, quiet),
	})
	return slog.New(handler).With(slog.String("run", runID[:8])), runID
}
