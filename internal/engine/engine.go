// Package engine validates a snapshot and runs the three scheme detectors
// over it. The three detectors share no mutable state, so they run
// concurrently; each parallelizes its own outer loops on a fixed worker pool.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jayalath-jknr/GraphRisk/internal/config"
	"github.com/jayalath-jknr/GraphRisk/internal/detect/bonus"
	"github.com/jayalath-jknr/GraphRisk/internal/detect/mirror"
	"github.com/jayalath-jknr/GraphRisk/internal/detect/opposite"
	"github.com/jayalath-jknr/GraphRisk/internal/domain"
	"github.com/jayalath-jknr/GraphRisk/internal/report"
	"github.com/jayalath-jknr/GraphRisk/internal/telemetry"
)

// Engine runs a full detection pass over one snapshot.
type Engine struct {
	cfg *config.Config
}

// New creates an engine. A nil config selects the defaults.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{cfg: cfg}
}

// Run validates the snapshot, executes all three detectors, and assembles
// the combined report. Results are all-or-nothing: a validation failure or a
// cancelled context returns an error and no report, never a partial one with
// a misleadingly low fraud estimate.
func (e *Engine) Run(ctx context.Context, snap *domain.Snapshot) (*report.Report, error) {
	start := time.Now()

	if err := snap.Validate(); err != nil {
		telemetry.ObserveScan("error", time.Since(start))
		return nil, fmt.Errorf("snapshot validation failed: %w", err)
	}
	telemetry.RecordSnapshotSize(len(snap.Clients))

	log.Info().
		Int("partners", len(snap.Partners)).
		Int("clients", len(snap.Clients)).
		Int("workers", e.cfg.Workers).
		Msg("starting detection run")

	var (
		wg          sync.WaitGroup
		oppResult   *opposite.Result
		mirResult   *mirror.Result
		bonusResult *bonus.Result
		oppErr      error
		mirErr      error
		bonusErr    error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		oppResult, oppErr = opposite.New(e.cfg.Opposite, e.cfg.Workers).Detect(ctx, snap)
	}()
	go func() {
		defer wg.Done()
		mirResult, mirErr = mirror.New(e.cfg.Mirror, e.cfg.Workers).Detect(ctx, snap)
	}()
	go func() {
		defer wg.Done()
		bonusResult, bonusErr = bonus.New(e.cfg.Bonus).Detect(ctx, snap)
	}()
	wg.Wait()

	for _, err := range []error{oppErr, mirErr, bonusErr} {
		if err != nil {
			outcome := "error"
			if ctx.Err() != nil {
				outcome = "cancelled"
			}
			telemetry.ObserveScan(outcome, time.Since(start))
			return nil, fmt.Errorf("detection run aborted: %w", err)
		}
	}

	telemetry.RecordFindings(opposite.SchemeType, oppResult.TotalSchemes)
	telemetry.RecordFindings(mirror.SchemeType, mirResult.TotalGroups)
	telemetry.RecordFindings(bonus.SchemeType, bonusResult.TotalSuspiciousClients)
	telemetry.ObserveScan("ok", time.Since(start))

	rep := report.Assemble(oppResult, mirResult, bonusResult)

	log.Info().
		Str("run_id", rep.RunID).
		Int("findings", rep.Totals.Findings).
		Float64("estimated_fraud_value", rep.Totals.EstimatedFraudValue).
		Dur("elapsed", time.Since(start)).
		Msg("detection run completed")

	return rep, nil
}
