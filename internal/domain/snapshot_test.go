package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"rfc3339", "2024-03-01T12:00:00Z", true},
		{"rfc3339 with offset", "2024-03-01T12:00:00+02:00", true},
		{"naive datetime", "2024-03-01T12:00:00", true},
		{"date only", "2024-03-01", true},
		{"empty", "", false},
		{"garbage", "yesterday", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, 2024, ts.Year())
			}
		})
	}
}

func TestClientActive_DefaultsTrue(t *testing.T) {
	c := Client{ClientID: "C1"}
	assert.True(t, c.Active())

	inactive := false
	c.IsActive = &inactive
	assert.False(t, c.Active())
}

func TestGroupClientsByPartner_PreservesOrder(t *testing.T) {
	clients := []Client{
		{ClientID: "C1", ReferredBy: "P2"},
		{ClientID: "C2", ReferredBy: "P1"},
		{ClientID: "C3", ReferredBy: "P2"},
		{ClientID: "C4", ReferredBy: "P3"},
	}

	pg := GroupClientsByPartner(clients)

	require.Equal(t, []string{"P2", "P1", "P3"}, pg.Keys)
	require.Len(t, pg.Groups["P2"], 2)
	assert.Equal(t, "C1", pg.Groups["P2"][0].ClientID)
	assert.Equal(t, "C3", pg.Groups["P2"][1].ClientID)
}

func TestSnapshotValidate(t *testing.T) {
	valid := func() *Snapshot {
		return &Snapshot{Clients: []Client{{
			ClientID: "C1",
			Trades: []Trade{{
				ClientID:   "C1",
				Instrument: "EUR/USD",
				Direction:  DirectionBuy,
				Volume:     1.0,
			}},
		}}}
	}

	t.Run("valid snapshot", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("empty snapshot", func(t *testing.T) {
		assert.NoError(t, (&Snapshot{}).Validate())
	})

	t.Run("missing client id", func(t *testing.T) {
		s := valid()
		s.Clients[0].ClientID = ""
		assert.ErrorIs(t, s.Validate(), ErrMissingClientID)
	})

	t.Run("missing instrument", func(t *testing.T) {
		s := valid()
		s.Clients[0].Trades[0].Instrument = ""
		assert.ErrorIs(t, s.Validate(), ErrMissingInstrument)
	})

	t.Run("bad direction", func(t *testing.T) {
		s := valid()
		s.Clients[0].Trades[0].Direction = "HOLD"
		assert.ErrorIs(t, s.Validate(), ErrMissingDirection)
	})

	t.Run("non-positive volume", func(t *testing.T) {
		s := valid()
		s.Clients[0].Trades[0].Volume = 0
		assert.ErrorIs(t, s.Validate(), ErrInvalidVolume)
	})

	t.Run("trade owned by another client", func(t *testing.T) {
		s := valid()
		s.Clients[0].Trades[0].ClientID = "C9"
		assert.ErrorIs(t, s.Validate(), ErrClientIDMismatch)
	})

	t.Run("trade client id may be omitted", func(t *testing.T) {
		s := valid()
		s.Clients[0].Trades[0].ClientID = ""
		assert.NoError(t, s.Validate())
	})
}
