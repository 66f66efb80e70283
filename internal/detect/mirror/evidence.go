package mirror

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// topInstruments ranks the instruments traded across all cluster members by
// frequency, most traded first. The sort is stable over first-seen order so
// equal counts do not reshuffle between runs.
func topInstruments(members []*domain.Client, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, c := range members {
		for i := range c.Trades {
			inst := c.Trades[i].Instrument
			if _, seen := counts[inst]; !seen {
				order = append(order, inst)
			}
			counts[inst]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

// buildEvidence assembles the cluster evidence summary: size, combined trade
// count, concentrated instruments, and a batch-signup note when all members
// signed up within the configured span.
func buildEvidence(members []*domain.Client, totalTrades int, instruments []string, signupSpanDays int) string {
	parts := []string{
		fmt.Sprintf("Detected %d accounts trading in lockstep under same partner.", len(members)),
		fmt.Sprintf("Combined %d trades analyzed.", totalTrades),
	}

	if len(instruments) > 0 {
		parts = append(parts, fmt.Sprintf("Concentrated trading in: %s.", strings.Join(instruments, ", ")))
	}

	if span, ok := signupSpan(members); ok && span <= signupSpanDays {
		parts = append(parts, fmt.Sprintf("All accounts signed up within %d days.", span))
	}

	return strings.Join(parts, " ")
}

// signupSpan returns the day spread between the earliest and latest parseable
// signup dates. Needs at least two parseable dates.
func signupSpan(members []*domain.Client) (int, bool) {
	var first, last int64
	parsed := 0
	for _, c := range members {
		ts, ok := domain.ParseTimestamp(c.SignupDate)
		if !ok {
			continue
		}
		unix := ts.Unix()
		if parsed == 0 || unix < first {
			first = unix
		}
		if parsed == 0 || unix > last {
			last = unix
		}
		parsed++
	}
	if parsed < 2 {
		return 0, false
	}
	return int((last - first) / (24 * 60 * 60)), true
}
