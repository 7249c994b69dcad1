package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
)

func gTrade(account, market, outcome string, size float64, ts time.Time) models.TradeRecord {
	return models.TradeRecord{
		AccountID: account,
		MarketID:  market,
		Outcome:   outcome,
		Size:      size,
		Price:     0.5,
		Timestamp: ts,
	}
}

func TestCoTradingWeightIdenticalTrades(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := gTrade("a", "m", "yes", 100, ts)
	b := gTrade("b", "m", "yes", 100, ts)
	// same outcome, same size, zero gap: 1.0 * 1.0 / (0+1)
	require.InDelta(t, 1.0, coTradingWeight(a, b), 1e-9)
}

func TestCoTradingWeightDecay(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := gTrade("a", "m", "yes", 100, ts)
	b := gTrade("b", "m", "yes", 100, ts.Add(9*time.Second))
	require.InDelta(t, 0.1, coTradingWeight(a, b), 1e-9)

	// opposite outcomes halve the weight
	c := gTrade("c", "m", "no", 100, ts)
	require.InDelta(t, 0.5, coTradingWeight(a, c), 1e-9)
}

func TestCoTradingWeightZeroSizeClamp(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := gTrade("a", "m", "yes", 0, ts)
	b := gTrade("b", "m", "yes", 0, ts)
	require.InDelta(t, 1.0, coTradingWeight(a, b), 1e-9)
}

func TestBuildWalletGraphEdges(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		gTrade("a", "m1", "yes", 100, ts),
		gTrade("b", "m1", "yes", 100, ts),
		gTrade("c", "m1", "yes", 100, ts.Add(time.Hour)), // too far in time for an edge
	}

	b := NewBuilder()
	g, err := b.BuildWalletGraph(context.Background(), trades)
	require.NoError(t, err)

	require.Len(t, g["a"], 1)
	require.Len(t, g["b"], 1)
	require.Equal(t, "b", g["a"][0].Target)
	require.InDelta(t, 1.0, g["a"][0].Weight, 1e-9)
	// symmetric edge
	require.Equal(t, "a", g["b"][0].Target)
	require.NotContains(t, g, "c")
}

func TestBuildWalletGraphAccumulatesAcrossMarkets(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		gTrade("a", "m1", "yes", 100, ts),
		gTrade("b", "m1", "yes", 100, ts),
		gTrade("a", "m2", "yes", 100, ts),
		gTrade("b", "m2", "yes", 100, ts),
	}

	b := NewBuilder(WithConcurrency(2))
	g, err := b.BuildWalletGraph(context.Background(), trades)
	require.NoError(t, err)
	require.Len(t, g["a"], 1)
	require.InDelta(t, 2.0, g["a"][0].Weight, 1e-9)
}

func TestBuildWalletGraphBelowThreshold(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		gTrade("a", "m1", "yes", 100, ts),
		gTrade("b", "m1", "yes", 100, ts.Add(2*time.Second)), // weight 1/3 < 0.7
	}
	b := NewBuilder()
	g, err := b.BuildWalletGraph(context.Background(), trades)
	require.NoError(t, err)
	require.Empty(t, g)
}

func TestBuildWalletGraphThresholdAboveMaxWeight(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		gTrade("a", "m1", "yes", 100, ts),
		gTrade("b", "m1", "yes", 100, ts), // identical pair, weight exactly 1.0
	}
	b := NewBuilder(WithThreshold(1.1))
	g, err := b.BuildWalletGraph(context.Background(), trades)
	require.NoError(t, err)
	require.Empty(t, g)
}

func TestDetectCommunities(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		gTrade("a", "m1", "yes", 100, ts),
		gTrade("b", "m1", "yes", 100, ts),
		gTrade("c", "m2", "yes", 50, ts), // trades alone, never appears
	}
	b := NewBuilder()
	g, err := b.BuildWalletGraph(context.Background(), trades)
	require.NoError(t, err)

	communities := b.DetectCommunities(g)
	require.Len(t, communities, 1)
	require.Len(t, communities[0], 2)
	require.True(t, communities[0].Has("a"))
	require.True(t, communities[0].Has("b"))
	require.False(t, communities[0].Has("c"))
}

func TestDetectCommunitiesEmptyGraph(t *testing.T) {
	b := NewBuilder()
	require.Empty(t, b.DetectCommunities(models.WalletGraph{}))
}

func TestBuildWalletGraphCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder()
	_, err := b.BuildWalletGraph(ctx, []models.TradeRecord{
		gTrade("a", "m1", "yes", 100, ts),
		gTrade("b", "m1", "yes", 100, ts),
	})
	require.Error(t, err)
}
