package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

const snapshotJSON = `{
  "partners": [
    {"partner_id": "P1", "name": "Alpha Partners", "type": "master", "commission_rate": 0.25}
  ],
  "clients": [
    {
      "client_id": "C1",
      "name": "First Client",
      "referred_by": "P1",
      "signup_date": "2024-01-01",
      "initial_deposit": 500,
      "current_balance": 450,
      "trades": [
        {
          "trade_id": "T1",
          "client_id": "C1",
          "timestamp": "2024-03-01T12:00:00Z",
          "instrument": "EUR/USD",
          "direction": "BUY",
          "volume": 1.5,
          "price": 1.085,
          "profit_loss": 42.5
        }
      ]
    }
  ]
}`

func TestJSONFile_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))

	snap, err := NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Partners, 1)
	assert.Equal(t, domain.PartnerTypeMaster, snap.Partners[0].Type)

	require.Len(t, snap.Clients, 1)
	c := snap.Clients[0]
	assert.Equal(t, "C1", c.ClientID)
	assert.True(t, c.Active(), "omitted is_active defaults to active")
	require.Len(t, c.Trades, 1)
	assert.Equal(t, domain.DirectionBuy, c.Trades[0].Direction)
	assert.InDelta(t, 42.5, c.Trades[0].ProfitLoss, 1e-9)
}

func TestJSONFile_MissingFile(t *testing.T) {
	_, err := NewJSONFile(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.ErrorContains(t, err, "failed to read snapshot file")
}

func TestJSONFile_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFile(path).Load(context.Background())
	assert.ErrorContains(t, err, "failed to parse snapshot JSON")
}
