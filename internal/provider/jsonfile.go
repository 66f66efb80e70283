package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// JSONFile loads a snapshot from a JSON export file with top-level
// "partners" and "clients" arrays.
type JSONFile struct {
	Path string
}

// NewJSONFile creates a JSON file provider.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Load reads and decodes the snapshot file.
func (p *JSONFile) Load(_ context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	log.Info().
		Str("path", p.Path).
		Int("partners", len(snap.Partners)).
		Int("clients", len(snap.Clients)).
		Msg("snapshot loaded from file")

	return &snap, nil
}
