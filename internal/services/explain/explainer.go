package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"PolyWatch/internal/domain/models"
)

// topN features reported per explanation.
const topN = 3

// Explainer produces lightweight per-entity explanations from feature
// contributions and the ensemble breakdown.
type Explainer struct{}

func New() *Explainer { return &Explainer{} }

// Build ranks features by absolute value and formats a narrative from the
// ensemble breakdown.
func (e *Explainer) Build(feats map[string]float64, score models.EnsembleScore) models.Explanation {
	type kv struct {
		name  string
		value float64
	}
	ranked := make([]kv, 0, len(feats))
	for name, v := range feats {
		ranked = append(ranked, kv{name, v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		ai, aj := math.Abs(ranked[i].value), math.Abs(ranked[j].value)
		if ai != aj {
			return ai > aj
		}
		return ranked[i].name < ranked[j].name
	})

	n := topN
	if len(ranked) < n {
		n = len(ranked)
	}
	top := make([]string, 0, n)
	for _, f := range ranked[:n] {
		top = append(top, f.name)
	}

	parts := make([]string, 0, len(score.Breakdown))
	modelNames := make([]string, 0, len(score.Breakdown))
	for name := range score.Breakdown {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)
	for _, name := range modelNames {
		parts = append(parts, fmt.Sprintf("%s=%.2f", name, score.Breakdown[name]))
	}

	return models.Explanation{
		EntityID:    score.EntityID,
		TopFeatures: top,
		Narrative:   fmt.Sprintf("Ensemble score %.2f derived from models: %s", score.Score, strings.Join(parts, ", ")),
	}
}
