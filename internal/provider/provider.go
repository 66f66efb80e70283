// Package provider builds in-memory snapshots from the sources the platform
// publishes them to: a JSON file export, a Redis key, or the reporting
// Postgres replica. The detection core only ever sees the assembled
// domain.Snapshot.
package provider

import (
	"context"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// Provider loads one snapshot. Implementations do all their I/O here; the
// detection engine itself performs none.
type Provider interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}
