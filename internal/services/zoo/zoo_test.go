package zoo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/services/features"
)

type stubModel struct {
	name  string
	score float64
	err   error
}

func (m *stubModel) Name() string { return m.name }
func (m *stubModel) PredictProba(context.Context, map[string]float64) (float64, error) {
	return m.score, m.err
}

func TestRegistryDuplicateName(t *testing.T) {
	_, err := NewRegistry(
		&Wrapper{Name: "m", Model: &stubModel{name: "m"}},
		&Wrapper{Name: "m", Model: &stubModel{name: "m"}},
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry(&Wrapper{Name: "m", Model: &stubModel{name: "m"}})
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	w, ok := r.Get("m")
	require.True(t, ok)
	require.Equal(t, "m", w.Name)

	_, ok = r.Get("missing")
	require.False(t, ok)
}

func TestWrapperPredictKeepsRawScore(t *testing.T) {
	w := &Wrapper{
		Name:        "m",
		Model:       &stubModel{name: "m", score: 1.4},
		Postprocess: Clamp01,
	}
	pred, err := w.Predict(context.Background(), models.FeatureVector{EntityID: "acc-1"})
	require.NoError(t, err)
	require.Equal(t, "acc-1", pred.EntityID)
	require.Equal(t, 1.0, pred.Score)
	require.Equal(t, 1.4, pred.Metadata["raw_score"])
}

func TestWrapperPredictError(t *testing.T) {
	w := &Wrapper{Name: "m", Model: &stubModel{name: "m", err: errors.New("boom")}}
	_, err := w.Predict(context.Background(), models.FeatureVector{})
	require.Error(t, err)
}

func TestClamp01(t *testing.T) {
	require.Equal(t, 0.0, Clamp01(-0.3))
	require.Equal(t, 1.0, Clamp01(1.3))
	require.Equal(t, 0.42, Clamp01(0.42))
}

func TestLogisticModelMonotonic(t *testing.T) {
	m := &LogisticModel{
		ModelName: "logit",
		Weights:   map[string]float64{features.FeatProfitProxy: 2.0},
	}
	low, err := m.PredictProba(context.Background(), map[string]float64{features.FeatProfitProxy: 0.1})
	require.NoError(t, err)
	high, err := m.PredictProba(context.Background(), map[string]float64{features.FeatProfitProxy: 0.9})
	require.NoError(t, err)
	require.Greater(t, high, low)
	require.Greater(t, low, 0.0)
	require.Less(t, high, 1.0)
}

func TestLogisticModelIgnoresMissingFeatures(t *testing.T) {
	m := &LogisticModel{ModelName: "logit", Weights: map[string]float64{"absent": 100}}
	got, err := m.PredictProba(context.Background(), map[string]float64{})
	require.NoError(t, err)
	require.InDelta(t, 0.5, got, 1e-9) // sigmoid(0)
}

func TestHeuristicModelBounds(t *testing.T) {
	m := &HeuristicModel{ModelName: "heur"}
	got, err := m.PredictProba(context.Background(), map[string]float64{
		features.FeatAvgTradeSize: 1e9,
		features.FeatProfitProxy:  -3,
	})
	require.NoError(t, err)
	// tanh saturates at 1 and the profit component caps at 1
	require.InDelta(t, 1.0, got, 1e-6)
}
