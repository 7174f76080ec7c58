package enroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/maciespectre/internal/awsenv"
	"github.com/ppiankov/maciespectre/internal/dispatch"
)

// Options configures a regional reconciliation.
type Options struct {
	SelfID       string
	ExportBucket string
	KMSKeyARN    string
}

// RegionResult is the outcome of reconciling one region.
type RegionResult struct {
	Region      string            `json:"region"`
	AutoEnabled bool              `json:"auto_enabled"`
	Members     int               `json:"enabled_members"`
	ToEnroll    []awsenv.Account  `json:"to_enroll"`
	Outcomes    dispatch.Outcomes `json:"outcomes"`
}

// ReconcileRegion brings one region in line with the roster: auto-enable
// for new accounts, the export configuration, then one member per missing
// account. Reads that fail abort the region; mutating failures are
// recorded in Outcomes and the rest still run.
func ReconcileRegion(ctx context.Context, e Enroller, roster []awsenv.Account, opts Options, d *dispatch.Dispatcher, logger *slog.Logger) (*RegionResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := &RegionResult{Region: e.Region()}
	logger.Info("Processing region", slog.String("region", res.Region))

	auto, err := e.AutoEnabled(ctx)
	if err != nil {
		return nil, err
	}
	res.AutoEnabled = auto

	var intents []dispatch.Intent
	if !auto {
		intents = append(intents, AutoEnableIntent{Enroller: e})
	}
	if opts.ExportBucket != "" {
		intents = append(intents, NewExportIntent(e, opts.ExportBucket, opts.KMSKeyARN))
	}

	members, err := e.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	current := EnabledMembers(members, logger)
	res.Members = len(current)
	res.ToEnroll = ComputeEnableList(roster, current, opts.SelfID)

	res.Outcomes = d.Dispatch(ctx, intents...)
	res.Outcomes = append(res.Outcomes, Apply(ctx, res.ToEnroll, e, d)...)
	if failed := res.Outcomes.Failed(); len(failed) > 0 {
		logger.Warn(fmt.Sprintf("%d operation(s) failed", len(failed)), slog.String("region", res.Region))
	}
	return res, nil
}
