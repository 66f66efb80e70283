package bonus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jayalath-jknr/GraphRisk/internal/detect"
	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// SchemeType tags findings produced by this detector.
const SchemeType = "bonus_abuse"

// Config holds the bonus-abuse thresholds. A partner is flagged when any one
// of the three partner conditions trips.
type Config struct {
	// SuspiciousRatio flags a partner when the share of suspicious
	// referrals exceeds it.
	SuspiciousRatio float64 `yaml:"suspicious_ratio"`
	// MinAvgQuality flags a partner when the mean referral quality falls
	// below it.
	MinAvgQuality float64 `yaml:"min_avg_quality"`
	// MinConversionRate flags a partner when the active-client share falls
	// below it.
	MinConversionRate float64 `yaml:"min_conversion_rate"`
	// FraudValueRate converts suspicious clients' deposits into the
	// estimated fraud value.
	FraudValueRate float64 `yaml:"fraud_value_rate"`
	// LowAvgDeposit is the average referral deposit called out in partner
	// evidence as suspiciously low.
	LowAvgDeposit float64 `yaml:"low_avg_deposit"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		SuspiciousRatio:   0.3,
		MinAvgQuality:     50,
		MinConversionRate: 0.25,
		FraudValueRate:    0.15,
		LowAvgDeposit:     300,
	}
}

// ClientFinding is one suspicious referred client, ranked by ascending
// quality score (worst first).
type ClientFinding struct {
	ClientID        string   `json:"client_id"`
	ClientName      string   `json:"client_name"`
	PartnerID       string   `json:"partner_id"`
	QualityScore    int      `json:"quality_score"`
	Flags           []string `json:"flags"`
	Metrics         Metrics  `json:"metrics"`
	EvidenceSummary string   `json:"evidence_summary"`
}

// PartnerFinding is one partner whose referral book looks like bonus
// harvesting.
type PartnerFinding struct {
	PartnerID           string  `json:"partner_id"`
	PartnerName         string  `json:"partner_name"`
	PartnerType         string  `json:"partner_type"`
	TotalReferrals      int     `json:"total_referrals"`
	SuspiciousReferrals int     `json:"suspicious_referrals"`
	SuspiciousRatio     float64 `json:"suspicious_ratio"`
	AvgClientQuality    float64 `json:"avg_client_quality"`
	ConversionRate      float64 `json:"conversion_rate"`
	EstimatedFraudValue float64 `json:"estimated_fraud_value"`
	EvidenceSummary     string  `json:"evidence_summary"`
}

// Result is the detector output. SuspiciousClients is the full ranked list;
// the report assembler caps what is presented.
type Result struct {
	TotalSuspiciousClients   int              `json:"total_suspicious_clients"`
	TotalSuspiciousPartners  int              `json:"total_suspicious_partners"`
	TotalEstimatedFraudValue float64          `json:"total_estimated_fraud_value"`
	SuspiciousClients        []ClientFinding  `json:"suspicious_clients"`
	SuspiciousPartners       []PartnerFinding `json:"suspicious_partners"`
}

// Detector runs per-client quality scoring and the partner-level rollup. It
// does not use the trade comparator: bonus abuse is visible in account
// behavior alone.
type Detector struct {
	cfg Config
}

// New creates a detector.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect scores every client and rolls results up per partner. The scan is
// linear in clients, so it runs inline; cancellation is still honored between
// phases so the engine's all-or-nothing contract holds.
func (d *Detector) Detect(ctx context.Context, snap *domain.Snapshot) (*Result, error) {
	start := time.Now()

	qualities := make([]Quality, len(snap.Clients))
	for i := range snap.Clients {
		qualities[i] = ScoreClient(&snap.Clients[i])
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result := &Result{}
	for i := range snap.Clients {
		c := &snap.Clients[i]
		q := &qualities[i]
		if !q.IsSuspicious {
			continue
		}
		result.SuspiciousClients = append(result.SuspiciousClients, ClientFinding{
			ClientID:        c.ClientID,
			ClientName:      c.Name,
			PartnerID:       c.ReferredBy,
			QualityScore:    q.Score,
			Flags:           q.Flags,
			Metrics:         q.Metrics,
			EvidenceSummary: clientEvidence(q),
		})
	}
	detect.SortAsc(result.SuspiciousClients, func(f ClientFinding) float64 { return float64(f.QualityScore) })
	result.TotalSuspiciousClients = len(result.SuspiciousClients)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result.SuspiciousPartners = d.analyzePartners(snap, qualities)
	detect.SortByConfidenceDesc(result.SuspiciousPartners, func(f PartnerFinding) float64 { return f.SuspiciousRatio })
	result.TotalSuspiciousPartners = len(result.SuspiciousPartners)
	for i := range result.SuspiciousPartners {
		result.TotalEstimatedFraudValue += result.SuspiciousPartners[i].EstimatedFraudValue
	}

	log.Info().
		Int("clients_scored", len(qualities)).
		Int("suspicious_clients", result.TotalSuspiciousClients).
		Int("suspicious_partners", result.TotalSuspiciousPartners).
		Dur("elapsed", time.Since(start)).
		Msg("bonus abuse scan completed")

	return result, nil
}

// analyzePartners computes referral-quality aggregates for every partner with
// at least one referred client and keeps the ones that trip a flag condition.
func (d *Detector) analyzePartners(snap *domain.Snapshot, qualities []Quality) []PartnerFinding {
	clientIdx := make(map[string][]int)
	for i := range snap.Clients {
		ref := snap.Clients[i].ReferredBy
		clientIdx[ref] = append(clientIdx[ref], i)
	}

	var findings []PartnerFinding
	for pi := range snap.Partners {
		p := &snap.Partners[pi]
		referred := clientIdx[p.PartnerID]
		if len(referred) == 0 {
			continue
		}

		total := len(referred)
		suspicious := 0
		active := 0
		var qualitySum, suspiciousDeposits, depositSum float64
		for _, ci := range referred {
			q := &qualities[ci]
			qualitySum += float64(q.Score)
			depositSum += snap.Clients[ci].InitialDeposit
			if q.IsSuspicious {
				suspicious++
				suspiciousDeposits += snap.Clients[ci].InitialDeposit
			}
			if snap.Clients[ci].Active() {
				active++
			}
		}

		ratio := float64(suspicious) / float64(total)
		avgQuality := qualitySum / float64(total)
		conversion := float64(active) / float64(total)

		if ratio <= d.cfg.SuspiciousRatio && avgQuality >= d.cfg.MinAvgQuality && conversion >= d.cfg.MinConversionRate {
			continue
		}

		findings = append(findings, PartnerFinding{
			PartnerID:           p.PartnerID,
			PartnerName:         p.Name,
			PartnerType:         string(p.Type),
			TotalReferrals:      total,
			SuspiciousReferrals: suspicious,
			SuspiciousRatio:     detect.Round3(ratio),
			AvgClientQuality:    detect.Round1(avgQuality),
			ConversionRate:      detect.Round3(conversion),
			EstimatedFraudValue: detect.Round2(d.cfg.FraudValueRate * suspiciousDeposits),
			EvidenceSummary:     d.partnerEvidence(snap, referred, total, suspicious, conversion, depositSum),
		})
	}
	return findings
}

// partnerEvidence summarizes why a partner's referral book is concerning.
func (d *Detector) partnerEvidence(snap *domain.Snapshot, referred []int, total, suspicious int, conversion, depositSum float64) string {
	parts := []string{
		fmt.Sprintf("Partner has %d referrals with %d flagged as suspicious.", total, suspicious),
		fmt.Sprintf("Client conversion rate: %.0f%% (below 25%% is concerning).", conversion*100),
	}

	inactive := 0
	for _, ci := range referred {
		if !snap.Clients[ci].Active() {
			inactive++
		}
	}
	if float64(inactive)/float64(total) > 0.5 {
		parts = append(parts, fmt.Sprintf("%d/%d referred clients are now inactive.", inactive, total))
	}

	if avgDeposit := depositSum / float64(total); avgDeposit < d.cfg.LowAvgDeposit {
		parts = append(parts, fmt.Sprintf("Average deposit $%.2f is suspiciously low.", avgDeposit))
	}

	return strings.Join(parts, " ")
}
