package opposite

import (
	"fmt"
	"strings"

	"github.com/jayalath-jknr/GraphRisk/internal/compare"
	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// buildEvidence assembles the human-readable evidence summary for one client
// pair: detected-pair count, a timing qualifier, an inverse-P&L note, and the
// distinct instruments involved in first-seen order.
func buildEvidence(clientA, clientB *domain.Client, pairs []compare.OppositePair, timingCorr, pnlCorr float64) string {
	parts := []string{fmt.Sprintf(
		"Detected %d coordinated opposite trades between %s and %s.",
		len(pairs), displayName(clientA), displayName(clientB),
	)}

	if timingCorr > 0.7 {
		parts = append(parts, fmt.Sprintf("Trading timing is highly correlated (%.0f%%).", timingCorr*100))
	} else if timingCorr > 0.4 {
		parts = append(parts, fmt.Sprintf("Trading timing shows moderate correlation (%.0f%%).", timingCorr*100))
	}

	if pnlCorr < -0.5 {
		parts = append(parts, fmt.Sprintf(
			"Profit/loss shows inverse correlation (%.2f), consistent with profit-splitting scheme.", pnlCorr))
	}

	if len(pairs) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Opposite trades concentrated in: %s.", strings.Join(distinctInstruments(pairs), ", ")))
	}

	return strings.Join(parts, " ")
}

func distinctInstruments(pairs []compare.OppositePair) []string {
	seen := make(map[string]struct{}, len(pairs))
	var instruments []string
	for i := range pairs {
		if _, ok := seen[pairs[i].Instrument]; ok {
			continue
		}
		seen[pairs[i].Instrument] = struct{}{}
		instruments = append(instruments, pairs[i].Instrument)
	}
	return instruments
}

func displayName(c *domain.Client) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ClientID
}
