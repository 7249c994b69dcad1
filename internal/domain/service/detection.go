package service

import "context"

// PredictiveModel scores an entity from a named-feature mapping.
// Implementations must be safe for concurrent use; prediction touches no
// shared mutable state.
type PredictiveModel interface {
	Name() string
	PredictProba(ctx context.Context, features map[string]float64) (float64, error)
}

// AnomalyDetector scores a feature vector for unsupervised anomaly signals.
// Detectors used by the engine are stateless: repeated runs over the same
// vectors yield identical scores.
type AnomalyDetector interface {
	Name() string
	Score(features map[string]float64) float64
}

// Postprocess transforms a raw model score (e.g. calibration).
type Postprocess func(raw float64) float64
