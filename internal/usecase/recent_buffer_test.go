package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
)

func bufTrade(id string, ts time.Time) models.TradeRecord {
	return models.TradeRecord{TradeID: id, AccountID: "acc", MarketID: "m", Timestamp: ts}
}

func TestRecentBufferEviction(t *testing.T) {
	b := NewRecentTradesBuffer(3, time.Hour)
	now := time.Now()
	for i := 0; i < 5; i++ {
		b.Add(bufTrade(string(rune('a'+i)), now))
	}
	require.Equal(t, 3, b.Len())

	trades, err := b.RecentTrades(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 3)
	require.Equal(t, "c", trades[0].TradeID)
	require.Equal(t, "e", trades[2].TradeID)
}

func TestRecentBufferAgeFilter(t *testing.T) {
	b := NewRecentTradesBuffer(100, 10*time.Minute)
	now := time.Now()
	b.Add(bufTrade("old", now.Add(-time.Hour)))
	b.Add(bufTrade("fresh", now))

	trades, err := b.RecentTrades(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, "fresh", trades[0].TradeID)
}

func TestRecentBufferCopyIsolation(t *testing.T) {
	b := NewRecentTradesBuffer(10, time.Hour)
	b.Add(bufTrade("x", time.Now()))

	trades, err := b.RecentTrades(context.Background())
	require.NoError(t, err)
	trades[0].TradeID = "mutated"

	again, err := b.RecentTrades(context.Background())
	require.NoError(t, err)
	require.Equal(t, "x", again[0].TradeID)
}
