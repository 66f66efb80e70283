package compare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

var testBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testTrade(instrument string, dir domain.Direction, volume float64, offset time.Duration, pnl float64) domain.Trade {
	return domain.Trade{
		TradeID:    "t",
		Timestamp:  testBase.Add(offset).Format(time.RFC3339),
		Instrument: instrument,
		Direction:  dir,
		Volume:     volume,
		Price:      1.1,
		ProfitLoss: pnl,
	}
}

func TestTradeSimilarity_IdenticalTrades(t *testing.T) {
	a := testTrade("EUR/USD", domain.DirectionBuy, 1.0, 0, 100)
	b := a

	assert.Equal(t, 1.0, TradeSimilarity(&a, &b, 5*time.Minute))
}

func TestTradeSimilarity_VolumeTiers(t *testing.T) {
	tests := []struct {
		name     string
		volumeB  float64
		expected float64
	}{
		{"within 20 percent", 0.85, 1.0},
		{"within 50 percent", 0.6, 0.875},
		{"below half", 0.4, 0.75},
	}

	a := testTrade("EUR/USD", domain.DirectionBuy, 1.0, 0, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testTrade("EUR/USD", domain.DirectionBuy, tt.volumeB, 0, 0)
			assert.InDelta(t, tt.expected, TradeSimilarity(&a, &b, 5*time.Minute), 1e-9)
		})
	}
}

func TestTradeSimilarity_TimingDecay(t *testing.T) {
	a := testTrade("EUR/USD", domain.DirectionBuy, 1.0, 0, 0)

	// 5 minutes apart in a 10 minute window: timing component is 0.5.
	b := testTrade("EUR/USD", domain.DirectionBuy, 1.0, 5*time.Minute, 0)
	assert.InDelta(t, 0.875, TradeSimilarity(&a, &b, 10*time.Minute), 1e-9)

	// Outside the window the component drops to zero.
	c := testTrade("EUR/USD", domain.DirectionBuy, 1.0, 11*time.Minute, 0)
	assert.InDelta(t, 0.75, TradeSimilarity(&a, &c, 10*time.Minute), 1e-9)
}

func TestTradeSimilarity_UnparseableTimestampDropsTimingOnly(t *testing.T) {
	a := testTrade("EUR/USD", domain.DirectionBuy, 1.0, 0, 0)
	b := a
	b.Timestamp = "not-a-time"

	assert.InDelta(t, 0.75, TradeSimilarity(&a, &b, 5*time.Minute), 1e-9)
}

func TestTimingCorrelation(t *testing.T) {
	window := 10 * time.Minute

	t.Run("empty inputs", func(t *testing.T) {
		assert.Zero(t, TimingCorrelation(nil, nil, window))
		assert.Zero(t, TimingCorrelation([]domain.Trade{testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 0)}, nil, window))
	})

	t.Run("no shared instrument", func(t *testing.T) {
		a := []domain.Trade{testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 0)}
		b := []domain.Trade{testTrade("GBP/USD", domain.DirectionBuy, 1, 0, 0)}
		assert.Zero(t, TimingCorrelation(a, b, window))
	})

	t.Run("two minutes apart scores 0.8", func(t *testing.T) {
		a := []domain.Trade{testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 0)}
		b := []domain.Trade{testTrade("EUR/USD", domain.DirectionSell, 1, 2*time.Minute, 0)}
		assert.InDelta(t, 0.8, TimingCorrelation(a, b, window), 1e-9)
	})

	t.Run("averages over same-instrument cross pairs", func(t *testing.T) {
		a := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 0),
			testTrade("EUR/USD", domain.DirectionBuy, 1, 60*time.Minute, 0),
		}
		b := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionSell, 1, 2*time.Minute, 0),
			testTrade("EUR/USD", domain.DirectionSell, 1, 62*time.Minute, 0),
		}
		// Pairs at 2m, 62m, 58m, 2m: (0.8 + 0 + 0 + 0.8) / 4.
		assert.InDelta(t, 0.4, TimingCorrelation(a, b, window), 1e-9)
	})
}

func TestOppositePairs(t *testing.T) {
	window := 10 * time.Minute
	a := []domain.Trade{
		testTrade("EUR/USD", domain.DirectionBuy, 1.0, 0, 100),
		testTrade("GBP/USD", domain.DirectionBuy, 1.0, 0, 50),
	}
	b := []domain.Trade{
		testTrade("EUR/USD", domain.DirectionSell, 0.8, 2*time.Minute, -100), // opposite, in window
		testTrade("EUR/USD", domain.DirectionBuy, 1.0, 1*time.Minute, 20),    // same direction
		testTrade("EUR/USD", domain.DirectionSell, 1.0, 30*time.Minute, -50), // out of window
		testTrade("USD/JPY", domain.DirectionSell, 1.0, 1*time.Minute, -10),  // other instrument
	}

	pairs := OppositePairs(a, b, window)
	assert.Len(t, pairs, 1)
	assert.Equal(t, "EUR/USD", pairs[0].Instrument)
	assert.InDelta(t, 120.0, pairs[0].TimeGapSeconds, 1e-9)
	assert.InDelta(t, 0.8, pairs[0].VolumeRatio, 1e-9)
}

func TestPnLCorrelation(t *testing.T) {
	t.Run("perfect inverse", func(t *testing.T) {
		a := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 100),
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 50),
		}
		b := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -100),
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -50),
		}
		assert.InDelta(t, -1.0, PnLCorrelation(a, b), 1e-9)
	})

	t.Run("too few trades", func(t *testing.T) {
		a := []domain.Trade{testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 100)}
		b := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -100),
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -50),
		}
		assert.Zero(t, PnLCorrelation(a, b))
	})

	t.Run("zero variance", func(t *testing.T) {
		a := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 10),
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 10),
		}
		b := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -100),
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -50),
		}
		assert.Zero(t, PnLCorrelation(a, b))
	})

	t.Run("truncates to shorter sequence", func(t *testing.T) {
		a := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 100),
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, 50),
			testTrade("EUR/USD", domain.DirectionBuy, 1, 0, -999),
		}
		b := []domain.Trade{
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -100),
			testTrade("EUR/USD", domain.DirectionSell, 1, 0, -50),
		}
		assert.InDelta(t, -1.0, PnLCorrelation(a, b), 1e-9)
	})
}
