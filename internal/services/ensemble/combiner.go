package ensemble

import (
	"PolyWatch/internal/domain/models"
)

// Combiner fuses per-model predictions into one score per entity via a
// weighted average. Combination is commutative over both model and prediction
// order.
type Combiner struct {
	weights map[string]float64
}

// NewCombiner builds a combiner. A nil or empty weights map selects the
// unweighted arithmetic mean.
func NewCombiner(weights map[string]float64) *Combiner {
	w := make(map[string]float64, len(weights))
	for name, v := range weights {
		w[name] = v
	}
	return &Combiner{weights: w}
}

// Combine groups predictions by entity and computes the combined score plus
// per-model breakdown. Breakdown keys are exactly the models that predicted
// for that entity.
func (c *Combiner) Combine(predictions []models.ModelPrediction) []models.EnsembleScore {
	grouped := make(map[string]map[string]float64)
	order := make([]string, 0)
	for _, p := range predictions {
		if _, ok := grouped[p.EntityID]; !ok {
			grouped[p.EntityID] = make(map[string]float64)
			order = append(order, p.EntityID)
		}
		grouped[p.EntityID][p.ModelName] = p.Score
	}

	results := make([]models.EnsembleScore, 0, len(grouped))
	for _, entityID := range order {
		breakdown := grouped[entityID]
		results = append(results, models.EnsembleScore{
			EntityID:  entityID,
			Score:     c.weightedAverage(breakdown),
			Breakdown: breakdown,
		})
	}
	return results
}

// AggregateStatistics reports the mean score per model across all
// predictions, skipping models with no observations. Used for backtest
// diagnostics, not the per-entity ensemble.
func (c *Combiner) AggregateStatistics(predictions []models.ModelPrediction) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, p := range predictions {
		sums[p.ModelName] += p.Score
		counts[p.ModelName]++
	}
	stats := make(map[string]float64, len(sums))
	for name, sum := range sums {
		if counts[name] > 0 {
			stats[name] = sum / float64(counts[name])
		}
	}
	return stats
}

// weightedAverage applies configured weights over the models present for one
// entity. Models with no configured weight contribute weight 0; if the
// applicable total weight is zero the unweighted mean is used instead of
// dividing by zero.
func (c *Combiner) weightedAverage(modelScores map[string]float64) float64 {
	if len(modelScores) == 0 {
		return 0
	}
	if len(c.weights) == 0 {
		return mean(modelScores)
	}
	totalWeight := 0.0
	weightedSum := 0.0
	for name, score := range modelScores {
		w := c.weights[name]
		totalWeight += w
		weightedSum += w * score
	}
	if totalWeight == 0 {
		return mean(modelScores)
	}
	return weightedSum / totalWeight
}

func mean(scores map[string]float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
