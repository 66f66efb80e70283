// Package compare provides the pairwise trade comparison primitives shared by
// the detectors: per-trade similarity, timing correlation, opposite-pair
// detection, positional P&L correlation, and greedy trade matching. All
// operations are pure and deterministic given their inputs.
package compare

import (
	"math"
	"time"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// similarityComponents is the number of equally weighted components in
// TradeSimilarity: instrument, direction, volume tier, timing proximity.
const similarityComponents = 4.0

// TradeSimilarity scores how alike two trades are, in [0, 1].
//
// Components contribute 0-1 each: instrument equality, direction equality, a
// volume-ratio tier (>=0.8 full, >=0.5 half), and linear timing decay inside
// the window. When either timestamp is unparseable the timing component is 0
// while the other three still count.
func TradeSimilarity(a, b *domain.Trade, window time.Duration) float64 {
	score := 0.0

	if a.Instrument == b.Instrument {
		score += 1.0
	}
	if a.Direction == b.Direction {
		score += 1.0
	}

	switch ratio := volumeRatio(a.Volume, b.Volume); {
	case ratio >= 0.8:
		score += 1.0
	case ratio >= 0.5:
		score += 0.5
	}

	if ta, ok := a.Time(); ok {
		if tb, ok := b.Time(); ok {
			score += timingDecay(ta, tb, window)
		}
	}

	return score / similarityComponents
}

// TimingCorrelation averages the timing-decay score over every cross pair of
// trades that shares an instrument. Returns 0 when either side is empty or no
// same-instrument pair exists. Trades with unparseable timestamps are
// excluded from the comparison entirely.
func TimingCorrelation(tradesA, tradesB []domain.Trade, window time.Duration) float64 {
	if len(tradesA) == 0 || len(tradesB) == 0 {
		return 0
	}

	var sum float64
	comparisons := 0

	for i := range tradesA {
		ta, ok := tradesA[i].Time()
		if !ok {
			continue
		}
		for j := range tradesB {
			if tradesA[i].Instrument != tradesB[j].Instrument {
				continue
			}
			tb, ok := tradesB[j].Time()
			if !ok {
				continue
			}
			comparisons++
			sum += timingDecay(ta, tb, window)
		}
	}

	if comparisons == 0 {
		return 0
	}
	return math.Min(1.0, sum/float64(comparisons))
}

// OppositePair records one cross pair of offsetting trades.
type OppositePair struct {
	TradeA         *domain.Trade `json:"trade_a"`
	TradeB         *domain.Trade `json:"trade_b"`
	Instrument     string        `json:"instrument"`
	TimeGapSeconds float64       `json:"time_gap_seconds"`
	VolumeRatio    float64       `json:"volume_ratio"`
}

// OppositePairs returns every cross pair where the instrument matches, the
// direction differs, and the trades executed within the window. Pairs are in
// discovery order (outer index over tradesA, inner over tradesB). Trades with
// unparseable timestamps cannot satisfy the window check and are skipped.
func OppositePairs(tradesA, tradesB []domain.Trade, window time.Duration) []OppositePair {
	var pairs []OppositePair

	for i := range tradesA {
		a := &tradesA[i]
		ta, ok := a.Time()
		if !ok {
			continue
		}
		for j := range tradesB {
			b := &tradesB[j]
			if a.Instrument != b.Instrument || a.Direction == b.Direction {
				continue
			}
			tb, ok := b.Time()
			if !ok {
				continue
			}
			gap := absDuration(ta.Sub(tb))
			if gap > window {
				continue
			}
			pairs = append(pairs, OppositePair{
				TradeA:         a,
				TradeB:         b,
				Instrument:     a.Instrument,
				TimeGapSeconds: gap.Seconds(),
				VolumeRatio:    volumeRatio(a.Volume, b.Volume),
			})
		}
	}

	return pairs
}

// PnLCorrelation computes the Pearson correlation of the two profit/loss
// sequences, aligned by position and truncated to the shorter length. Returns
// 0 when either sequence has fewer than two elements or zero variance.
// Profit-splitting schemes show strongly inverse correlation here.
func PnLCorrelation(tradesA, tradesB []domain.Trade) float64 {
	if len(tradesA) < 2 || len(tradesB) < 2 {
		return 0
	}

	n := len(tradesA)
	if len(tradesB) < n {
		n = len(tradesB)
	}

	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += tradesA[i].ProfitLoss
		meanB += tradesB[i].ProfitLoss
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var num, varA, varB float64
	for i := 0; i < n; i++ {
		da := tradesA[i].ProfitLoss - meanA
		db := tradesB[i].ProfitLoss - meanB
		num += da * db
		varA += da * da
		varB += db * db
	}

	denom := math.Sqrt(varA * varB)
	if denom == 0 {
		return 0
	}
	return num / denom
}

func timingDecay(ta, tb time.Time, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	gap := absDuration(ta.Sub(tb))
	if gap > window {
		return 0
	}
	return 1.0 - float64(gap)/float64(window)
}

func volumeRatio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a < b {
		return a / b
	}
	return b / a
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
