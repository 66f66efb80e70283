// Package opposite detects coordinated opposite position-taking between
// client accounts referred by different partners: offsetting directions in
// the same instrument within minutes, with inverse profit/loss patterns
// consistent with profit splitting.
package opposite

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jayalath-jknr/GraphRisk/internal/compare"
	"github.com/jayalath-jknr/GraphRisk/internal/detect"
	"github.com/jayalath-jknr/GraphRisk/internal/domain"
	"github.com/jayalath-jknr/GraphRisk/internal/parallel"
)

// SchemeType tags findings produced by this detector.
const SchemeType = "opposite_trading"

// Config holds the opposite-trading thresholds.
type Config struct {
	// Threshold is the minimum suspicion score for a client pair to be
	// reported.
	Threshold float64 `yaml:"threshold"`
	// WindowMinutes bounds the timing proximity window for both timing
	// correlation and opposite-pair detection.
	WindowMinutes int `yaml:"window_minutes"`
	// TopPairs caps the example opposite pairs carried on a finding.
	TopPairs int `yaml:"top_pairs"`

	// Suspicion score weights. Inverse P&L correlation contributes via
	// max(0, -pnl).
	TimingWeight   float64 `yaml:"timing_weight"`
	OppositeWeight float64 `yaml:"opposite_weight"`
	PnLWeight      float64 `yaml:"pnl_weight"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		Threshold:      0.6,
		WindowMinutes:  10,
		TopPairs:       5,
		TimingWeight:   0.3,
		OppositeWeight: 0.4,
		PnLWeight:      0.3,
	}
}

// Finding is one suspected opposite-trading client pair.
type Finding struct {
	SchemeType          string                 `json:"scheme_type"`
	PartnerA            string                 `json:"partner_a"`
	PartnerB            string                 `json:"partner_b"`
	ClientA             string                 `json:"client_a"`
	ClientB             string                 `json:"client_b"`
	ClientAName         string                 `json:"client_a_name"`
	ClientBName         string                 `json:"client_b_name"`
	Confidence          float64                `json:"confidence_score"`
	TimingCorrelation   float64                `json:"timing_correlation"`
	OppositeRatio       float64                `json:"opposite_trade_ratio"`
	PnLCorrelation      float64                `json:"pnl_correlation"`
	NumOppositePairs    int                    `json:"num_opposite_pairs"`
	TotalTradesAnalyzed int                    `json:"total_trades_analyzed"`
	EstimatedFraudValue float64                `json:"estimated_fraud_value"`
	EvidenceSummary     string                 `json:"evidence_summary"`
	TopOppositePairs    []compare.OppositePair `json:"top_opposite_pairs"`
}

// PartnerInvolvement aggregates findings per implicated partner.
type PartnerInvolvement struct {
	PartnerID  string  `json:"partner_id"`
	Schemes    int     `json:"schemes"`
	TotalValue float64 `json:"total_value"`
	Clients    int     `json:"clients"`
}

// Result is the detector output: findings sorted by descending confidence
// plus the network-level partner rollup.
type Result struct {
	TotalSchemes             int                  `json:"total_schemes_detected"`
	TotalEstimatedFraudValue float64              `json:"total_estimated_fraud_value"`
	PartnerInvolvement       []PartnerInvolvement `json:"partner_involvement"`
	Findings                 []Finding            `json:"schemes"`
}

// Detector runs the cross-partner client-pair scan.
type Detector struct {
	cfg     Config
	workers int
}

// New creates a detector. workers <= 0 selects the default pool size.
func New(cfg Config, workers int) *Detector {
	return &Detector{cfg: cfg, workers: workers}
}

type pairTask struct {
	partnerA, partnerB string
	clientA, clientB   *domain.Client
}

// Detect scans every client pair drawn from distinct partner groups. The full
// cross product is evaluated with no pruning: restricting candidates up front
// (for example to instrument-overlapping clients) would change which pairs
// are ever considered. A cancelled context returns no partial findings.
func (d *Detector) Detect(ctx context.Context, snap *domain.Snapshot) (*Result, error) {
	start := time.Now()
	window := time.Duration(d.cfg.WindowMinutes) * time.Minute

	groups := domain.GroupClientsByPartner(snap.Clients)
	tasks := buildPairTasks(groups)

	findings := make([]*Finding, len(tasks))
	err := parallel.ForEach(ctx, d.workers, len(tasks), func(i int) {
		findings[i] = d.scorePair(tasks[i], window)
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, f := range findings {
		if f != nil {
			result.Findings = append(result.Findings, *f)
		}
	}
	detect.SortByConfidenceDesc(result.Findings, func(f Finding) float64 { return f.Confidence })

	result.TotalSchemes = len(result.Findings)
	for i := range result.Findings {
		result.TotalEstimatedFraudValue += result.Findings[i].EstimatedFraudValue
	}
	result.PartnerInvolvement = rollupPartners(result.Findings)

	log.Info().
		Int("partners", len(groups.Keys)).
		Int("client_pairs", len(tasks)).
		Int("findings", result.TotalSchemes).
		Dur("elapsed", time.Since(start)).
		Msg("opposite trading scan completed")

	return result, nil
}

// buildPairTasks enumerates every client pair across every unordered pair of
// distinct partner groups, skipping clients without trades.
func buildPairTasks(groups *domain.PartnerGroups) []pairTask {
	var tasks []pairTask
	for i, pa := range groups.Keys {
		for _, pb := range groups.Keys[i+1:] {
			for _, ca := range groups.Groups[pa] {
				if len(ca.Trades) == 0 {
					continue
				}
				for _, cb := range groups.Groups[pb] {
					if len(cb.Trades) == 0 {
						continue
					}
					tasks = append(tasks, pairTask{partnerA: pa, partnerB: pb, clientA: ca, clientB: cb})
				}
			}
		}
	}
	return tasks
}

// scorePair computes the suspicion score for one client pair and returns a
// finding when it crosses the threshold.
func (d *Detector) scorePair(task pairTask, window time.Duration) *Finding {
	tradesA := task.clientA.Trades
	tradesB := task.clientB.Trades

	timingCorr := compare.TimingCorrelation(tradesA, tradesB, window)
	pairs := compare.OppositePairs(tradesA, tradesB, window)
	pnlCorr := compare.PnLCorrelation(tradesA, tradesB)

	minLen := len(tradesA)
	if len(tradesB) < minLen {
		minLen = len(tradesB)
	}
	oppositeRatio := 0.0
	if minLen > 0 {
		oppositeRatio = float64(len(pairs)) / float64(minLen)
	}

	score := d.cfg.TimingWeight*timingCorr +
		d.cfg.OppositeWeight*oppositeRatio +
		d.cfg.PnLWeight*max0(-pnlCorr)
	if score < d.cfg.Threshold {
		return nil
	}

	var sumA, sumB float64
	for i := range tradesA {
		sumA += tradesA[i].ProfitLoss
	}
	for i := range tradesB {
		sumB += tradesB[i].ProfitLoss
	}
	fraudValue := detect.Round2(0.5 * (abs(sumA) + abs(sumB)))

	top := pairs
	if d.cfg.TopPairs > 0 && len(top) > d.cfg.TopPairs {
		top = top[:d.cfg.TopPairs]
	}

	return &Finding{
		SchemeType:          SchemeType,
		PartnerA:            task.partnerA,
		PartnerB:            task.partnerB,
		ClientA:             task.clientA.ClientID,
		ClientB:             task.clientB.ClientID,
		ClientAName:         task.clientA.Name,
		ClientBName:         task.clientB.Name,
		Confidence:          detect.Round3(score),
		TimingCorrelation:   detect.Round3(timingCorr),
		OppositeRatio:       detect.Round3(oppositeRatio),
		PnLCorrelation:      detect.Round3(pnlCorr),
		NumOppositePairs:    len(pairs),
		TotalTradesAnalyzed: len(tradesA) + len(tradesB),
		EstimatedFraudValue: fraudValue,
		EvidenceSummary:     buildEvidence(task.clientA, task.clientB, pairs, timingCorr, pnlCorr),
		TopOppositePairs:    top,
	}
}

// rollupPartners aggregates schemes, cumulative value, and distinct client
// counts per partner id appearing in any finding. The accumulator map has an
// insert-or-update contract and partner order follows first appearance.
func rollupPartners(findings []Finding) []PartnerInvolvement {
	type acc struct {
		schemes int
		value   float64
		clients map[string]struct{}
	}
	byPartner := make(map[string]*acc)
	var order []string

	add := func(partnerID, clientID string, value float64) {
		a, ok := byPartner[partnerID]
		if !ok {
			a = &acc{clients: make(map[string]struct{})}
			byPartner[partnerID] = a
			order = append(order, partnerID)
		}
		a.schemes++
		a.value += value
		a.clients[clientID] = struct{}{}
	}

	for i := range findings {
		f := &findings[i]
		add(f.PartnerA, f.ClientA, f.EstimatedFraudValue)
		add(f.PartnerB, f.ClientB, f.EstimatedFraudValue)
	}

	involvement := make([]PartnerInvolvement, 0, len(order))
	for _, id := range order {
		a := byPartner[id]
		involvement = append(involvement, PartnerInvolvement{
			PartnerID:  id,
			Schemes:    a.schemes,
			TotalValue: a.value,
			Clients:    len(a.clients),
		})
	}
	return involvement
}

func max0(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
