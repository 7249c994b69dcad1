package sequence

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
)

func seqTrade(account string, ts time.Time) models.TradeRecord {
	return models.TradeRecord{AccountID: account, MarketID: "mkt-1", Timestamp: ts, Size: 1, Price: 0.5}
}

func TestEncodeDimensions(t *testing.T) {
	e := NewEncoder(0)
	ts := time.Now()
	embs := e.Encode([]models.TradeRecord{seqTrade("a", ts), seqTrade("b", ts)})
	require.Len(t, embs, 2)
	for _, emb := range embs {
		require.Len(t, emb.Values, DefaultDim)
	}
}

func TestEncodeSingleTradePositionZero(t *testing.T) {
	e := NewEncoder(4)
	embs := e.Encode([]models.TradeRecord{seqTrade("a", time.Now())})
	require.Len(t, embs, 1)
	// position 0: sin(0)=0 on even dims, cos(0)=1 on odd dims
	require.InDelta(t, 0.0, embs[0].Values[0], 1e-12)
	require.InDelta(t, 1.0, embs[0].Values[1], 1e-12)
	require.InDelta(t, 0.0, embs[0].Values[2], 1e-12)
	require.InDelta(t, 1.0, embs[0].Values[3], 1e-12)
}

func TestEncodeDeterministic(t *testing.T) {
	e := NewEncoder(8)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		seqTrade("a", ts),
		seqTrade("a", ts.Add(time.Minute)),
		seqTrade("a", ts.Add(2*time.Minute)),
	}
	first := e.Encode(trades)
	second := e.Encode(trades)
	require.Equal(t, first, second)
}

func TestEncodeOrderIndependent(t *testing.T) {
	e := NewEncoder(8)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := seqTrade("a", ts)
	b := seqTrade("a", ts.Add(time.Minute))
	fwd := e.Encode([]models.TradeRecord{a, b})
	rev := e.Encode([]models.TradeRecord{b, a})
	for i := range fwd[0].Values {
		require.InDelta(t, fwd[0].Values[i], rev[0].Values[i], 1e-12)
	}
}

func TestEnrichAddsSequenceFeatures(t *testing.T) {
	e := NewEncoder(2)
	vec := models.FeatureVector{
		EntityID: "a",
		Features: map[string]float64{"avg_trade_size": 10},
	}
	embs := []models.SequenceEmbedding{{EntityID: "a", Values: []float64{0.1, 0.2}}}

	enriched := e.Enrich([]models.FeatureVector{vec}, embs)
	require.Len(t, enriched, 1)
	require.Equal(t, 0.1, enriched[0].Features["seq_0"])
	require.Equal(t, 0.2, enriched[0].Features["seq_1"])
	// original vector is not mutated
	_, mutated := vec.Features["seq_0"]
	require.False(t, mutated)
}

func TestEnrichPassThroughWithoutEmbedding(t *testing.T) {
	e := NewEncoder(2)
	vec := models.FeatureVector{EntityID: "orphan", Features: map[string]float64{"x": 1}}
	enriched := e.Enrich([]models.FeatureVector{vec}, nil)
	require.Len(t, enriched, 1)
	require.Equal(t, vec, enriched[0])
}

func TestEmbeddingMagnitudeGrowsWithLength(t *testing.T) {
	e := NewEncoder(4)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	short := []models.TradeRecord{seqTrade("a", ts)}
	long := make([]models.TradeRecord, 0, 10)
	for i := 0; i < 10; i++ {
		long = append(long, seqTrade("a", ts.Add(time.Duration(i)*time.Minute)))
	}
	norm := func(vals []float64) float64 {
		s := 0.0
		for _, v := range vals {
			s += v * v
		}
		return math.Sqrt(s)
	}
	require.Greater(t, norm(e.Encode(long)[0].Values), norm(e.Encode(short)[0].Values))
}
