package ensemble

import (
	"testing"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
)

func pred(model, entity string, score float64) models.ModelPrediction {
	return models.ModelPrediction{ModelName: model, EntityID: entity, Score: score}
}

func TestCombineUnweightedMean(t *testing.T) {
	c := NewCombiner(nil)
	scores := c.Combine([]models.ModelPrediction{
		pred("A", "acc-1", 0.4),
		pred("B", "acc-1", 0.6),
	})
	require.Len(t, scores, 1)
	require.InDelta(t, 0.5, scores[0].Score, 1e-9)
	require.Equal(t, map[string]float64{"A": 0.4, "B": 0.6}, scores[0].Breakdown)
}

func TestCombineWeighted(t *testing.T) {
	c := NewCombiner(map[string]float64{"A": 1, "B": 0})
	scores := c.Combine([]models.ModelPrediction{
		pred("A", "acc-1", 0.2),
		pred("B", "acc-1", 0.9),
	})
	require.Len(t, scores, 1)
	require.InDelta(t, 0.2, scores[0].Score, 1e-9)
}

func TestCombineZeroTotalWeightFallsBackToMean(t *testing.T) {
	// configured weights apply to models absent from this entity
	c := NewCombiner(map[string]float64{"other": 1})
	scores := c.Combine([]models.ModelPrediction{
		pred("A", "acc-1", 0.4),
		pred("B", "acc-1", 0.6),
	})
	require.InDelta(t, 0.5, scores[0].Score, 1e-9)
}

func TestCombineGroupsByEntity(t *testing.T) {
	c := NewCombiner(nil)
	scores := c.Combine([]models.ModelPrediction{
		pred("A", "acc-1", 0.4),
		pred("A", "acc-2", 0.8),
		pred("B", "acc-1", 0.6),
	})
	require.Len(t, scores, 2)
	require.Equal(t, "acc-1", scores[0].EntityID)
	require.Equal(t, "acc-2", scores[1].EntityID)
	require.InDelta(t, 0.5, scores[0].Score, 1e-9)
	require.InDelta(t, 0.8, scores[1].Score, 1e-9)
}

func TestCombineEmpty(t *testing.T) {
	c := NewCombiner(nil)
	require.Empty(t, c.Combine(nil))
}

func TestAggregateStatistics(t *testing.T) {
	c := NewCombiner(nil)
	stats := c.AggregateStatistics([]models.ModelPrediction{
		pred("A", "acc-1", 0.2),
		pred("A", "acc-2", 0.4),
		pred("B", "acc-1", 1.0),
	})
	require.InDelta(t, 0.3, stats["A"], 1e-9)
	require.InDelta(t, 1.0, stats["B"], 1e-9)
	require.Len(t, stats, 2)
}
