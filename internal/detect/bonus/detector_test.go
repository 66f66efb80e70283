package bonus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// harvestClient is a classic bonus-abuse profile: no trading, drained
// balance, inactive. Quality score 25.
func harvestClient(id, partnerID string) domain.Client {
	return domain.Client{
		ClientID:       id,
		Name:           "Client " + id,
		ReferredBy:     partnerID,
		SignupDate:     "2024-01-01",
		InitialDeposit: 100,
		CurrentBalance: 0,
		IsActive:       boolPtr(false),
	}
}

// healthyClient scores a full 100.
func healthyClient(id, partnerID string) domain.Client {
	c := domain.Client{
		ClientID:       id,
		Name:           "Client " + id,
		ReferredBy:     partnerID,
		SignupDate:     "2024-01-01",
		InitialDeposit: 1000,
		CurrentBalance: 900,
	}
	for i := 0; i < 12; i++ {
		c.Trades = append(c.Trades, tradeWithVolume(100))
	}
	return c
}

func testSnapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		Partners: []domain.Partner{
			{PartnerID: "P1", Name: "Alpha Partners", Type: domain.PartnerTypeMaster},
			{PartnerID: "P2", Name: "Beta IB", Type: domain.PartnerTypeSubAffiliate, ParentID: "P1"},
		},
	}
	for i := 0; i < 4; i++ {
		snap.Clients = append(snap.Clients, harvestClient(fmt.Sprintf("S%d", i), "P1"))
	}
	for i := 0; i < 6; i++ {
		snap.Clients = append(snap.Clients, healthyClient(fmt.Sprintf("H%d", i), "P1"))
	}
	for i := 0; i < 5; i++ {
		snap.Clients = append(snap.Clients, healthyClient(fmt.Sprintf("B%d", i), "P2"))
	}
	return snap
}

func TestDetect_FlagsPartnerOverSuspiciousRatio(t *testing.T) {
	result, err := New(DefaultConfig()).Detect(context.Background(), testSnapshot())
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalSuspiciousClients)
	require.Equal(t, 1, result.TotalSuspiciousPartners)

	p := result.SuspiciousPartners[0]
	assert.Equal(t, "P1", p.PartnerID)
	assert.Equal(t, "Alpha Partners", p.PartnerName)
	assert.Equal(t, string(domain.PartnerTypeMaster), p.PartnerType)
	assert.Equal(t, 10, p.TotalReferrals)
	assert.Equal(t, 4, p.SuspiciousReferrals)
	assert.InDelta(t, 0.4, p.SuspiciousRatio, 1e-9)
	assert.InDelta(t, 70.0, p.AvgClientQuality, 1e-9) // (4*25 + 6*100) / 10
	assert.InDelta(t, 0.6, p.ConversionRate, 1e-9)
	assert.InDelta(t, 60.0, p.EstimatedFraudValue, 1e-9) // 0.15 * 400 in deposits

	assert.Contains(t, p.EvidenceSummary, "Partner has 10 referrals with 4 flagged as suspicious.")
	assert.Contains(t, p.EvidenceSummary, "Client conversion rate: 60% (below 25% is concerning).")
	assert.NotContains(t, p.EvidenceSummary, "now inactive")
	assert.NotContains(t, p.EvidenceSummary, "suspiciously low")

	assert.InDelta(t, 60.0, result.TotalEstimatedFraudValue, 1e-9)
}

func TestDetect_SuspiciousClientsRankedWorstFirst(t *testing.T) {
	snap := testSnapshot()
	// One client worse than the harvest profile: adds an immediate
	// withdrawal penalty, score 0.
	worst := harvestClient("S9", "P1")
	worst.InitialDeposit = 150
	worst.CurrentBalance = 20
	worst.WithdrawalDate = "2024-01-03"
	snap.Clients = append(snap.Clients, worst)

	result, err := New(DefaultConfig()).Detect(context.Background(), snap)
	require.NoError(t, err)
	require.Equal(t, 5, result.TotalSuspiciousClients)

	first := result.SuspiciousClients[0]
	assert.Equal(t, "S9", first.ClientID)
	assert.Equal(t, 0, first.QualityScore)
	assert.Equal(t, "P1", first.PartnerID)
	for i := 1; i < len(result.SuspiciousClients); i++ {
		assert.GreaterOrEqual(t,
			result.SuspiciousClients[i].QualityScore,
			result.SuspiciousClients[i-1].QualityScore)
	}
}

func TestDetect_CleanPartnerNotFlagged(t *testing.T) {
	snap := &domain.Snapshot{
		Partners: []domain.Partner{{PartnerID: "P2", Name: "Beta IB", Type: domain.PartnerTypeMaster}},
	}
	for i := 0; i < 5; i++ {
		snap.Clients = append(snap.Clients, healthyClient(fmt.Sprintf("B%d", i), "P2"))
	}

	result, err := New(DefaultConfig()).Detect(context.Background(), snap)
	require.NoError(t, err)
	assert.Zero(t, result.TotalSuspiciousClients)
	assert.Zero(t, result.TotalSuspiciousPartners)
	assert.Zero(t, result.TotalEstimatedFraudValue)
}

func TestDetect_PartnerWithoutReferralsSkipped(t *testing.T) {
	snap := testSnapshot()
	snap.Partners = append(snap.Partners, domain.Partner{
		PartnerID: "P3", Name: "Gamma", Type: domain.PartnerTypeMaster,
	})

	result, err := New(DefaultConfig()).Detect(context.Background(), snap)
	require.NoError(t, err)
	for _, p := range result.SuspiciousPartners {
		assert.NotEqual(t, "P3", p.PartnerID)
	}
}

func TestDetect_LowAvgDepositNoteInEvidence(t *testing.T) {
	snap := &domain.Snapshot{
		Partners: []domain.Partner{{PartnerID: "P1", Name: "Alpha", Type: domain.PartnerTypeMaster}},
		Clients: []domain.Client{
			harvestClient("S1", "P1"),
			harvestClient("S2", "P1"),
		},
	}

	result, err := New(DefaultConfig()).Detect(context.Background(), snap)
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalSuspiciousPartners)

	p := result.SuspiciousPartners[0]
	assert.Contains(t, p.EvidenceSummary, "2/2 referred clients are now inactive.")
	assert.Contains(t, p.EvidenceSummary, "Average deposit $100.00 is suspiciously low.")
}

func TestDetect_CancelledContextReturnsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(DefaultConfig()).Detect(ctx, testSnapshot())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}
