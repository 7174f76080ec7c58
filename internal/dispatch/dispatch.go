package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Intent is a mutating operation held as a value. Dry-run and commit paths
// build the same intents; only the final step differs.
type Intent interface {
	// Describe is a short imperative phrase such as "create job x in us-east-1".
	Describe() string
	// Payload is logged in dry-run mode. It may be nil.
	Payload() any
	// Execute performs the remote call and returns a short result detail.
	Execute(ctx context.Context) (string, error)
}

// Outcome records what happened to one intent.
type Outcome struct {
	Description string `json:"description"`
	Executed    bool   `json:"executed"`
	Result      string `json:"result,omitempty"`
	Error       string `json:"error,omitempty"`
	err         error
}

// Outcomes is the ordered result of a dispatch.
type Outcomes []Outcome

// Failed returns the outcomes whose execution failed.
func (oo Outcomes) Failed() Outcomes {
	var out Outcomes
	for _, o := range oo {
		if o.err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Err joins every failure, or returns nil when all intents succeeded.
func (oo Outcomes) Err() error {
	var errs []error
	for _, o := range oo {
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher either logs or executes intents.
type Dispatcher struct {
	Commit bool
	Logger *slog.Logger
}

// New creates a dispatcher. A nil logger falls back to slog.Default().
func New(commit bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{Commit: commit, Logger: logger}
}

// Dispatch handles each intent independently. A failing intent is recorded
// and the remaining intents still run.
func (d *Dispatcher) Dispatch(ctx context.Context, intents ...Intent) Outcomes {
	out := make(Outcomes, 0, len(intents))
	for _, in := range intents {
		out = append(out, d.one(ctx, in))
	}
	return out
}

func (d *Dispatcher) one(ctx context.Context, in Intent) Outcome {
	o := Outcome{Description: in.Describe()}

	if !d.Commit {
		attrs := []any{slog.Bool("dry_run", true)}
		if p := in.Payload(); p != nil {
			if raw, err := json.MarshalIndent(p, "", "  "); err == nil {
				attrs = append(attrs, slog.String("payload", string(raw)))
			}
		}
		d.Logger.Info("Would "+o.Description, attrs...)
		return o
	}

	if err := ctx.Err(); err != nil {
		o.err = fmt.Errorf("%s: %w", o.Description, err)
		o.Error = o.err.Error()
		return o
	}

	o.Executed = true
	result, err := in.Execute(ctx)
	if err != nil {
		o.err = fmt.Errorf("%s: %w", o.Description, err)
		o.Error = o.err.Error()
		d.Logger.Error("Failed to "+o.Description, slog.String("error", err.Error()))
		return o
	}
	o.Result = result
	d.Logger.Info("Done: "+o.Description, slog.String("result", result))
	return o
}
