package evaluate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
)

func score(entity string, v float64) models.EnsembleScore {
	return models.EnsembleScore{EntityID: entity, Score: v}
}

func TestClassificationMetrics(t *testing.T) {
	scores := []models.EnsembleScore{
		score("tp", 0.9),
		score("fp", 0.9),
		score("fn", 0.3),
	}
	truth := map[string]int{"tp": 1, "fn": 1}

	res := ClassificationMetrics(scores, truth, DefaultThreshold)
	require.InDelta(t, 0.5, res.Precision, 1e-9)
	require.InDelta(t, 0.5, res.Recall, 1e-9)
	require.InDelta(t, 0.5, res.F1, 1e-9)
}

func TestClassificationMetricsThresholdInclusive(t *testing.T) {
	scores := []models.EnsembleScore{score("a", 0.5)}
	res := ClassificationMetrics(scores, map[string]int{"a": 1}, 0.5)
	require.Equal(t, 1.0, res.Precision)
	require.Equal(t, 1.0, res.Recall)
	require.Equal(t, 1.0, res.F1)
}

func TestClassificationMetricsZeroDenominators(t *testing.T) {
	// nothing flagged, nothing positive
	res := ClassificationMetrics([]models.EnsembleScore{score("a", 0.1)}, map[string]int{}, 0.5)
	require.Zero(t, res.Precision)
	require.Zero(t, res.Recall)
	require.Zero(t, res.F1)
}

func TestClassificationMetricsMissingEntitiesCountNegative(t *testing.T) {
	scores := []models.EnsembleScore{score("unknown", 0.9)}
	res := ClassificationMetrics(scores, map[string]int{"other": 1}, 0.5)
	require.Zero(t, res.Precision)
	require.Zero(t, res.Recall)
}
