package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// DefaultSnapshotKey is where the platform publishes the latest snapshot.
const DefaultSnapshotKey = "graphrisk:snapshot:latest"

// Redis loads a snapshot published as a JSON blob under a Redis key.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis creates a Redis provider. An empty key selects the default.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &Redis{client: client, key: key}
}

// Load fetches and decodes the published snapshot.
func (p *Redis) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("no snapshot published at %s", p.key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot from redis: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	log.Info().
		Str("key", p.key).
		Int("partners", len(snap.Partners)).
		Int("clients", len(snap.Clients)).
		Msg("snapshot loaded from redis")

	return &snap, nil
}
