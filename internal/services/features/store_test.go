package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
)

func trade(account string, size, price float64, outcome string, ts time.Time) models.TradeRecord {
	return models.TradeRecord{
		TradeID:   account + ts.String(),
		AccountID: account,
		MarketID:  "mkt-1",
		Timestamp: ts,
		Outcome:   outcome,
		Size:      size,
		Price:     price,
	}
}

func TestRollingAverageFirstTradeEqualsSize(t *testing.T) {
	s := NewStore()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vecs := s.Compute([]models.TradeRecord{trade("acc-1", 100, 0.5, "yes", ts)})
	require.Len(t, vecs, 1)
	require.Equal(t, 100.0, vecs[0].Features[FeatAvgTradeSize])
}

func TestRollingAverageEMA(t *testing.T) {
	s := NewStore()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vecs := s.Compute([]models.TradeRecord{
		trade("acc-1", 100, 0.5, "yes", ts),
		trade("acc-1", 200, 0.5, "yes", ts.Add(time.Minute)),
	})
	require.Len(t, vecs, 2)
	// 0.5*100 + 0.5*200
	require.InDelta(t, 150.0, vecs[1].Features[FeatAvgTradeSize], 1e-9)
}

func TestRollingAverageCumulativeAcrossBatches(t *testing.T) {
	s := NewStore()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Compute([]models.TradeRecord{trade("acc-1", 100, 0.5, "yes", ts)})
	vecs := s.Compute([]models.TradeRecord{trade("acc-1", 200, 0.5, "yes", ts.Add(time.Minute))})
	require.InDelta(t, 150.0, vecs[0].Features[FeatAvgTradeSize], 1e-9)
	require.Equal(t, 2, s.History("acc-1"))
}

func TestProfitProxySign(t *testing.T) {
	s := NewStore()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vecs := s.Compute([]models.TradeRecord{
		trade("acc-1", 10, 0.3, "yes", ts),
		trade("acc-2", 10, 0.3, "no", ts),
		trade("acc-3", 10, 0.3, "WIN", ts),
	})
	require.InDelta(t, 0.7, vecs[0].Features[FeatProfitProxy], 1e-9)
	require.InDelta(t, -0.7, vecs[1].Features[FeatProfitProxy], 1e-9)
	// winning outcomes match case-insensitively
	require.InDelta(t, 0.7, vecs[2].Features[FeatProfitProxy], 1e-9)
}

func TestTimeToResolutionFloor(t *testing.T) {
	s := NewStore()
	midnight := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	vecs := s.Compute([]models.TradeRecord{trade("acc-1", 10, 0.5, "yes", midnight)})
	require.Equal(t, 1.0, vecs[0].Features[FeatTimeToRes])

	later := midnight.Add(90*time.Minute + 15*time.Second)
	vecs = s.Compute([]models.TradeRecord{trade("acc-2", 10, 0.5, "yes", later)})
	require.Equal(t, 5415.0, vecs[0].Features[FeatTimeToRes])
}

func TestLatest(t *testing.T) {
	s := NewStore()
	_, ok := s.Latest("acc-1")
	require.False(t, ok)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Compute([]models.TradeRecord{
		trade("acc-1", 100, 0.5, "yes", ts),
		trade("acc-1", 200, 0.5, "yes", ts.Add(time.Minute)),
	})
	latest, ok := s.Latest("acc-1")
	require.True(t, ok)
	require.InDelta(t, 150.0, latest.Features[FeatAvgTradeSize], 1e-9)
}
