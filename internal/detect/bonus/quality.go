// Package bonus detects referred clients who deposit, trigger a promotion,
// and withdraw with little genuine trading, plus the partners whose referral
// books are dominated by such accounts.
package bonus

import (
	"fmt"
	"math"
	"strings"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// SuspiciousScore is the quality score below which a client counts as
// suspicious. Like the penalty table itself this is a fixed heuristic, not a
// tunable threshold.
const SuspiciousScore = 50

// Quality flags, one per triggered penalty band.
const (
	FlagNoTradingActivity     = "no_trading_activity"
	FlagMinimalTrading        = "minimal_trading"
	FlagLowTradingVolume      = "low_trading_volume"
	FlagVeryLowVolumeRatio    = "very_low_volume_ratio"
	FlagLowVolumeRatio        = "low_volume_ratio"
	FlagImmediateWithdrawal   = "immediate_withdrawal"
	FlagQuickWithdrawal       = "quick_withdrawal"
	FlagMostFundsWithdrawn    = "most_funds_withdrawn"
	FlagSignificantWithdrawal = "significant_withdrawal"
	FlagInactiveAccount       = "inactive_account"
	FlagMinimalDeposit        = "minimal_deposit"
)

// Metrics are the raw inputs behind a quality score, carried on findings for
// analyst review.
type Metrics struct {
	NumTrades      int     `json:"num_trades"`
	InitialDeposit float64 `json:"initial_deposit"`
	CurrentBalance float64 `json:"current_balance"`
	IsActive       bool    `json:"is_active"`
}

// Quality is a client's bonus-abuse quality assessment. Score starts at 100
// and loses points per matched condition; lower means more suspicious.
type Quality struct {
	ClientID     string   `json:"client_id"`
	Score        int      `json:"quality_score"`
	IsSuspicious bool     `json:"is_suspicious"`
	Flags        []string `json:"flags"`
	Metrics      Metrics  `json:"metrics"`
}

// ScoreClient computes the quality score for one referred client. The bands
// within each metric are exclusive: only the first (worst) matching threshold
// per metric applies, so a client is never penalized twice for trade count or
// twice for volume ratio. The reported score is clamped at 0; the suspicion
// flag is decided before clamping.
func ScoreClient(c *domain.Client) Quality {
	score := 100
	var flags []string

	numTrades := len(c.Trades)
	deposit := c.InitialDeposit
	balance := c.CurrentBalance

	switch {
	case numTrades == 0:
		score -= 40
		flags = append(flags, FlagNoTradingActivity)
	case numTrades < 5:
		score -= 25
		flags = append(flags, FlagMinimalTrading)
	case numTrades < 10:
		score -= 10
		flags = append(flags, FlagLowTradingVolume)
	}

	if numTrades > 0 && deposit > 0 {
		var totalVolume float64
		for i := range c.Trades {
			totalVolume += c.Trades[i].Volume
		}
		switch ratio := totalVolume / deposit; {
		case ratio < 0.1:
			score -= 20
			flags = append(flags, FlagVeryLowVolumeRatio)
		case ratio < 0.5:
			score -= 10
			flags = append(flags, FlagLowVolumeRatio)
		}
	}

	if days, ok := daysToWithdrawal(c); ok {
		switch {
		case days <= 3:
			score -= 30
			flags = append(flags, FlagImmediateWithdrawal)
		case days <= 7:
			score -= 15
			flags = append(flags, FlagQuickWithdrawal)
		}
	}

	if deposit > 0 {
		switch ratio := balance / deposit; {
		case ratio < 0.2:
			score -= 15
			flags = append(flags, FlagMostFundsWithdrawn)
		case ratio < 0.5:
			score -= 5
			flags = append(flags, FlagSignificantWithdrawal)
		}
	}

	if !c.Active() {
		score -= 10
		flags = append(flags, FlagInactiveAccount)
	}

	if deposit < 200 {
		score -= 10
		flags = append(flags, FlagMinimalDeposit)
	}

	clamped := score
	if clamped < 0 {
		clamped = 0
	}

	return Quality{
		ClientID:     c.ClientID,
		Score:        clamped,
		IsSuspicious: score < SuspiciousScore,
		Flags:        flags,
		Metrics: Metrics{
			NumTrades:      numTrades,
			InitialDeposit: deposit,
			CurrentBalance: balance,
			IsActive:       c.Active(),
		},
	}
}

// daysToWithdrawal returns whole days between signup and withdrawal. Both
// dates must be present and parseable; otherwise the withdrawal-speed check
// is skipped (soft failure, never a run abort).
func daysToWithdrawal(c *domain.Client) (int, bool) {
	if c.WithdrawalDate == "" || c.SignupDate == "" {
		return 0, false
	}
	signup, ok := domain.ParseTimestamp(c.SignupDate)
	if !ok {
		return 0, false
	}
	withdrawal, ok := domain.ParseTimestamp(c.WithdrawalDate)
	if !ok {
		return 0, false
	}
	return int(math.Floor(withdrawal.Sub(signup).Hours() / 24)), true
}

// hasFlag reports whether a quality assessment triggered the given flag.
func (q *Quality) hasFlag(flag string) bool {
	for _, f := range q.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// clientEvidence assembles the evidence summary from triggered flags in fixed
// priority order: trading activity, withdrawal speed, percent withdrawn,
// deposit size, then inactivity.
func clientEvidence(q *Quality) string {
	var parts []string

	if q.hasFlag(FlagNoTradingActivity) {
		parts = append(parts, "No trading activity recorded after signup.")
	} else if q.hasFlag(FlagMinimalTrading) {
		parts = append(parts, fmt.Sprintf("Only %d trades executed.", q.Metrics.NumTrades))
	}

	if q.hasFlag(FlagImmediateWithdrawal) {
		parts = append(parts, "Funds withdrawn within 3 days of deposit.")
	} else if q.hasFlag(FlagQuickWithdrawal) {
		parts = append(parts, "Funds withdrawn within first week.")
	}

	if q.hasFlag(FlagMostFundsWithdrawn) {
		denom := q.Metrics.InitialDeposit
		if denom < 1 {
			denom = 1
		}
		pct := (1 - q.Metrics.CurrentBalance/denom) * 100
		parts = append(parts, fmt.Sprintf("%.0f%% of deposited funds withdrawn.", pct))
	}

	if q.hasFlag(FlagMinimalDeposit) {
		parts = append(parts, fmt.Sprintf("Small initial deposit: $%.2f.", q.Metrics.InitialDeposit))
	}

	if q.hasFlag(FlagInactiveAccount) {
		parts = append(parts, "Account is now inactive.")
	}

	if len(parts) == 0 {
		return "Multiple low-quality indicators detected."
	}
	return strings.Join(parts, " ")
}
