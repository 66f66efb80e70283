package compare

import (
	"time"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// DefaultMinMatchSimilarity is the floor a candidate pair must strictly
// exceed before it can be matched.
const DefaultMinMatchSimilarity = 0.7

// Match is one matched trade pair produced by GreedyMatch.
type Match struct {
	TradeA     *domain.Trade    `json:"trade_a"`
	TradeB     *domain.Trade    `json:"trade_b"`
	Similarity float64          `json:"similarity"`
	Instrument string           `json:"instrument"`
	Direction  domain.Direction `json:"direction"`
}

// GreedyMatch pairs trades from tradesA against tradesB one-sidedly: trades
// in A are processed in order, each taking the unused B trade with the
// strictly highest similarity above minSimilarity. Ties go to the lowest B
// index encountered first, and a B trade is consumed once matched. The used
// set is scoped to this call; nothing is shared across invocations.
//
// This is not a globally optimal bipartite matching; an earlier A trade can
// consume the B trade a later A trade would have matched better.
func GreedyMatch(tradesA, tradesB []domain.Trade, window time.Duration, minSimilarity float64) []Match {
	var matches []Match
	used := make(map[int]struct{}, len(tradesB))

	for i := range tradesA {
		a := &tradesA[i]
		bestSim := minSimilarity
		bestIdx := -1

		for j := range tradesB {
			if _, taken := used[j]; taken {
				continue
			}
			if sim := TradeSimilarity(a, &tradesB[j], window); sim > bestSim {
				bestSim = sim
				bestIdx = j
			}
		}

		if bestIdx < 0 {
			continue
		}
		used[bestIdx] = struct{}{}
		matches = append(matches, Match{
			TradeA:     a,
			TradeB:     &tradesB[bestIdx],
			Similarity: bestSim,
			Instrument: a.Instrument,
			Direction:  a.Direction,
		})
	}

	return matches
}
