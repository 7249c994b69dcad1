package anomaly

import (
	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/service"
)

// Engine coordinates a set of unsupervised detectors, independent of the
// predictive model registry. It only emits raw per-(detector, vector) scores;
// any fusion with model scores happens downstream.
type Engine struct {
	detectors []service.AnomalyDetector
}

func NewEngine(detectors ...service.AnomalyDetector) *Engine {
	return &Engine{detectors: detectors}
}

// Run scores every vector with every detector. With stateless detectors the
// output is identical across repeated runs over the same input.
func (e *Engine) Run(vectors []models.FeatureVector) []models.AnomalyScore {
	scores := make([]models.AnomalyScore, 0, len(vectors)*len(e.detectors))
	for _, vec := range vectors {
		for _, det := range e.detectors {
			scores = append(scores, models.AnomalyScore{
				EntityID:     vec.EntityID,
				DetectorName: det.Name(),
				Score:        det.Score(vec.Features),
			})
		}
	}
	return scores
}
