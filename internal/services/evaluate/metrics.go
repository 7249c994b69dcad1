package evaluate

import "PolyWatch/internal/domain/models"

// DefaultThreshold flags an entity when its combined score reaches it.
const DefaultThreshold = 0.5

// ClassificationMetrics computes precision/recall/F1 for combined scores
// against a binary ground-truth map. Entities absent from ground truth count
// as label 0. Zero denominators yield zero metrics rather than errors.
func ClassificationMetrics(scores []models.EnsembleScore, groundTruth map[string]int, threshold float64) models.EvaluationResult {
	var tp, fp, fn int
	for _, s := range scores {
		label := groundTruth[s.EntityID]
		flagged := s.Score >= threshold
		switch {
		case flagged && label == 1:
			tp++
		case flagged && label == 0:
			fp++
		case !flagged && label == 1:
			fn++
		}
	}

	var precision, recall, f1 float64
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return models.EvaluationResult{Precision: precision, Recall: recall, F1: f1}
}
