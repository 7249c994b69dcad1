package anomaly

import (
	"math"

	"PolyWatch/internal/services/features"
)

// SizeSpikeDetector flags unusually large rolling trade sizes. Stateless:
// the score depends only on the vector handed in.
type SizeSpikeDetector struct {
	Scale float64
}

func (d SizeSpikeDetector) Name() string { return "size_spike" }

func (d SizeSpikeDetector) Score(feats map[string]float64) float64 {
	scale := d.Scale
	if scale <= 0 {
		scale = 1000
	}
	return math.Tanh(feats[features.FeatAvgTradeSize] / scale)
}

// ProfitOutlierDetector flags extreme profit proxies in either direction.
type ProfitOutlierDetector struct{}

func (ProfitOutlierDetector) Name() string { return "profit_outlier" }

func (ProfitOutlierDetector) Score(feats map[string]float64) float64 {
	v := math.Abs(feats[features.FeatProfitProxy])
	if v > 1 {
		v = 1
	}
	return v
}
