// Package detect holds helpers shared by the three scheme detectors.
package detect

import (
	"math"
	"sort"
)

// Round3 rounds to three decimals, the precision findings report component
// scores at.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Round2 rounds to two decimals, used for monetary estimates.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Round1 rounds to one decimal, used for average quality scores.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// SortByConfidenceDesc sorts findings by descending confidence. The sort is
// stable so ties keep discovery order, which keeps reports deterministic and
// idempotent across runs.
func SortByConfidenceDesc[T any](items []T, confidence func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return confidence(items[i]) > confidence(items[j])
	})
}

// SortAsc stably sorts findings by an ascending numeric key (lowest quality
// first for bonus-abuse client rankings).
func SortAsc[T any](items []T, key func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) < key(items[j])
	})
}
