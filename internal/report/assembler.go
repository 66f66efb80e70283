// Package report packages the three detectors' outputs into the combined
// fraud report consumed by the presentation layer.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/jayalath-jknr/GraphRisk/internal/detect/bonus"
	"github.com/jayalath-jknr/GraphRisk/internal/detect/mirror"
	"github.com/jayalath-jknr/GraphRisk/internal/detect/opposite"
)

// MaxSuspiciousClients caps the client-level bonus-abuse list presented in a
// report. Partner-level output is unbounded.
const MaxSuspiciousClients = 50

// Totals aggregates across all three detectors.
type Totals struct {
	Findings            int     `json:"findings"`
	EstimatedFraudValue float64 `json:"estimated_fraud_value"`
}

// Report is the assembled output of one detection run. RunID and GeneratedAt
// identify the run; everything else is a deterministic function of the input
// snapshot and configuration.
type Report struct {
	RunID           string           `json:"run_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	OppositeTrading *opposite.Result `json:"opposite_trading"`
	MirrorTrading   *mirror.Result   `json:"mirror_trading"`
	BonusAbuse      *bonus.Result    `json:"bonus_abuse"`
	Totals          Totals           `json:"totals"`
}

// Assemble combines detector results into a report. The bonus client list is
// truncated to the MaxSuspiciousClients most suspicious entries; the
// truncation copies the result so detector outputs stay untouched.
func Assemble(o *opposite.Result, m *mirror.Result, b *bonus.Result) *Report {
	capped := *b
	if len(capped.SuspiciousClients) > MaxSuspiciousClients {
		capped.SuspiciousClients = capped.SuspiciousClients[:MaxSuspiciousClients]
	}

	return &Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		OppositeTrading: o,
		MirrorTrading:   m,
		BonusAbuse:      &capped,
		Totals: Totals{
			Findings: o.TotalSchemes + m.TotalGroups +
				b.TotalSuspiciousClients + b.TotalSuspiciousPartners,
			EstimatedFraudValue: o.TotalEstimatedFraudValue +
				m.TotalEstimatedFraudValue + b.TotalEstimatedFraudValue,
		},
	}
}
