// Package mirror detects clusters of client accounts under one partner that
// replicate the same trades: same instruments and directions, similar
// volumes, coordinated timing. Clusters are found by greedy clustering over a
// pairwise trade-match similarity matrix.
package mirror

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
const SchemeType = "mirror_trading"

// Config holds the mirror-trading thresholds.
type Config struct {
	// MinTrades is the minimum trade count for a client to be analyzed.
	MinTrades int `yaml:"min_trades"`
	// MinGroupSize is both the minimum partner-group size to analyze and
	// the minimum cluster size to report.
	MinGroupSize int `yaml:"min_group_size"`
	// MinMirrorRatio is the pairwise match ratio every cluster member must
	// reach against every other member.
	MinMirrorRatio float64 `yaml:"min_mirror_ratio"`
	// MatchWindowMinutes is the timing window for per-trade matching.
	MatchWindowMinutes int `yaml:"match_window_minutes"`
	// MinMatchSimilarity is the similarity floor for greedy trade matching.
	MinMatchSimilarity float64 `yaml:"min_match_similarity"`
	// TopInstruments caps the most-traded instruments listed on a finding.
	TopInstruments int `yaml:"top_instruments"`
	// SignupSpanDays is the signup-date spread that gets called out as
	// evidence of batch account creation.
	SignupSpanDays int `yaml:"signup_span_days"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinTrades:          10,
		MinGroupSize:       3,
		MinMirrorRatio:     0.5,
		MatchWindowMinutes: 5,
		MinMatchSimilarity: compare.DefaultMinMatchSimilarity,
		TopInstruments:     3,
		SignupSpanDays:     7,
	}
}

// Finding is one suspected mirror-trading cluster.
type Finding struct {
	SchemeType          string   `json:"scheme_type"`
	PartnerID           string   `json:"partner_id"`
	GroupSize           int      `json:"group_size"`
	ClientIDs           []string `json:"client_ids"`
	ClientNames         []string `json:"client_names"`
	Confidence          float64  `json:"confidence_score"`
	TotalTrades         int      `json:"total_trades"`
	CommonInstruments   []string `json:"common_instruments"`
	EstimatedFraudValue float64  `json:"estimated_fraud_value"`
	EvidenceSummary     string   `json:"evidence_summary"`
}

// Result is the detector output, findings sorted by descending confidence.
type Result struct {
	TotalGroups              int       `json:"total_groups_detected"`
	TotalClientsInvolved     int       `json:"total_clients_involved"`
	TotalEstimatedFraudValue float64   `json:"total_estimated_fraud_value"`
	Findings                 []Finding `json:"groups"`
}

// Detector runs the intra-partner cluster scan.
type Detector struct {
	cfg     Config
	workers int
}

// New creates a detector. workers <= 0 selects the default pool size.
func New(cfg Config, workers int) *Detector {
	return &Detector{cfg: cfg, workers: workers}
}

type partnerGroup struct {
	partnerID string
	clients   []*domain.Client
	matrix    [][]float64
}

type matrixCell struct {
	group *partnerGroup
	i, j  int
}

// Detect restricts the snapshot to actively trading clients, builds a
// symmetric similarity matrix per qualifying partner group, and clusters it.
// Matrix cells are computed on the worker pool (each cell writes disjoint
// slots); clustering itself is sequential because it is order-dependent by
// construction. A cancelled context returns no partial findings.
func (d *Detector) Detect(ctx context.Context, snap *domain.Snapshot) (*Result, error) {
	start := time.Now()
	window := time.Duration(d.cfg.MatchWindowMinutes) * time.Minute

	groups := d.eligibleGroups(snap)

	var cells []matrixCell
	for _, g := range groups {
		n := len(g.clients)
		g.matrix = make([][]float64, n)
		for i := range g.matrix {
			g.matrix[i] = make([]float64, n)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				cells = append(cells, matrixCell{group: g, i: i, j: j})
			}
		}
	}

	err := parallel.ForEach(ctx, d.workers, len(cells), func(k int) {
		c := cells[k]
		ratio := d.matchRatio(c.group.clients[c.i].Trades, c.group.clients[c.j].Trades, window)
		c.group.matrix[c.i][c.j] = ratio
		c.group.matrix[c.j][c.i] = ratio
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, g := range groups {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		for _, cluster := range d.clusterGroup(g) {
			f := d.buildFinding(g, cluster)
			result.Findings = append(result.Findings, f)
			result.TotalClientsInvolved += f.GroupSize
			result.TotalEstimatedFraudValue += f.EstimatedFraudValue
		}
	}
	detect.SortByConfidenceDesc(result.Findings, func(f Finding) float64 { return f.Confidence })
	result.TotalGroups = len(result.Findings)

	log.Info().
		Int("groups_analyzed", len(groups)).
		Int("matrix_cells", len(cells)).
		Int("clusters", result.TotalGroups).
		Dur("elapsed", time.Since(start)).
		Msg("mirror trading scan completed")

	return result, nil
}

// eligibleGroups keeps clients with enough trades, grouped by partner, and
// drops groups below the minimum size.
func (d *Detector) eligibleGroups(snap *domain.Snapshot) []*partnerGroup {
	active := make([]domain.Client, 0, len(snap.Clients))
	for i := range snap.Clients {
		if len(snap.Clients[i].Trades) >= d.cfg.MinTrades {
			active = append(active, snap.Clients[i])
		}
	}

	byPartner := domain.GroupClientsByPartner(active)
	var groups []*partnerGroup
	for _, key := range byPartner.Keys {
		clients := byPartner.Groups[key]
		if len(clients) < d.cfg.MinGroupSize {
			continue
		}
		groups = append(groups, &partnerGroup{partnerID: key, clients: clients})
	}
	return groups
}

// matchRatio is the cluster similarity metric: matched trades over the
// smaller trade count.
func (d *Detector) matchRatio(tradesA, tradesB []domain.Trade, window time.Duration) float64 {
	minLen := len(tradesA)
	if len(tradesB) < minLen {
		minLen = len(tradesB)
	}
	if minLen == 0 {
		return 0
	}
	matches := compare.GreedyMatch(tradesA, tradesB, window, d.cfg.MinMatchSimilarity)
	return float64(len(matches)) / float64(minLen)
}

// clusterGroup greedily clusters a group's similarity matrix. Iteration is
// index-ordered and a candidate joins only if it is similar to every current
// member, so results depend on client order within the group; that order is
// the snapshot's and therefore stable. Members of a qualifying cluster are
// excluded from later seeds; members of an undersized cluster stay available.
func (d *Detector) clusterGroup(g *partnerGroup) [][]int {
	n := len(g.clients)
	clustered := make([]bool, n)
	var clusters [][]int

	for i := 0; i < n; i++ {
		if clustered[i] {
			continue
		}
		cluster := []int{i}
		for j := i + 1; j < n; j++ {
			if clustered[j] {
				continue
			}
			similarToAll := true
			for _, k := range cluster {
				if g.matrix[j][k] < d.cfg.MinMirrorRatio {
					similarToAll = false
					break
				}
			}
			if similarToAll {
				cluster = append(cluster, j)
			}
		}
		if len(cluster) >= d.cfg.MinGroupSize {
			for _, idx := range cluster {
				clustered[idx] = true
			}
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}

func (d *Detector) buildFinding(g *partnerGroup, cluster []int) Finding {
	members := make([]*domain.Client, len(cluster))
	ids := make([]string, len(cluster))
	names := make([]string, len(cluster))
	totalTrades := 0
	var absPnL float64
	for i, idx := range cluster {
		c := g.clients[idx]
		members[i] = c
		ids[i] = c.ClientID
		names[i] = c.Name
		totalTrades += len(c.Trades)
		for j := range c.Trades {
			pnl := c.Trades[j].ProfitLoss
			if pnl < 0 {
				pnl = -pnl
			}
			absPnL += pnl
		}
	}

	// Mean pairwise similarity over all member pairs.
	var simSum float64
	pairCount := 0
	for i := 0; i < len(cluster); i++ {
		for j := i + 1; j < len(cluster); j++ {
			simSum += g.matrix[cluster[i]][cluster[j]]
			pairCount++
		}
	}
	confidence := simSum
	if pairCount > 0 {
		confidence = simSum / float64(pairCount)
	}

	top := topInstruments(members, d.cfg.TopInstruments)

	return Finding{
		SchemeType:          SchemeType,
		PartnerID:           g.partnerID,
		GroupSize:           len(cluster),
		ClientIDs:           ids,
		ClientNames:         names,
		Confidence:          detect.Round3(confidence),
		TotalTrades:         totalTrades,
		CommonInstruments:   top,
		EstimatedFraudValue: detect.Round2(0.3 * absPnL),
		EvidenceSummary:     buildEvidence(members, totalTrades, top, d.cfg.SignupSpanDays),
	}
}
