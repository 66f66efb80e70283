package domain

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order. Providers emit RFC3339 for trade
// timestamps and either RFC3339 or a bare date for signup/withdrawal dates.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a provider timestamp string. It accepts RFC3339
// (with a trailing Z or numeric offset), a naive datetime, or a bare date.
// Returns false when the value cannot be parsed; parse failures fail soft at
// the comparison level, never abort a run.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
