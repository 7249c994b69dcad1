package zoo

import (
	"context"
	"math"

	"PolyWatch/internal/services/features"
)

// LogisticModel scores via a sigmoid over a weighted feature sum. Features
// absent from the vector contribute nothing.
type LogisticModel struct {
	ModelName string
	Weights   map[string]float64
	Bias      float64
}

func (m *LogisticModel) Name() string { return m.ModelName }

func (m *LogisticModel) PredictProba(_ context.Context, feats map[string]float64) (float64, error) {
	z := m.Bias
	for name, w := range m.Weights {
		if v, ok := feats[name]; ok {
			z += w * v
		}
	}
	return 1.0 / (1.0 + math.Exp(-z)), nil
}

// HeuristicModel is a rule-based scorer: large positions with a strong profit
// proxy are suspicious. It needs no training and serves as a stable baseline
// next to the calibrated models.
type HeuristicModel struct {
	ModelName string
	SizeScale float64 // trade size mapped through tanh(size/scale)
}

func (m *HeuristicModel) Name() string { return m.ModelName }

func (m *HeuristicModel) PredictProba(_ context.Context, feats map[string]float64) (float64, error) {
	scale := m.SizeScale
	if scale <= 0 {
		scale = 1000
	}
	sizeComponent := math.Tanh(feats[features.FeatAvgTradeSize] / scale)
	profitComponent := math.Abs(feats[features.FeatProfitProxy])
	if profitComponent > 1 {
		profitComponent = 1
	}
	return 0.5*sizeComponent + 0.5*profitComponent, nil
}

// Clamp01 is the default calibration postprocess: clips a score into [0, 1].
func Clamp01(raw float64) float64 {
	if raw < 0 {
		return 0
	}
	if raw > 1 {
		return 1
	}
	return raw
}
