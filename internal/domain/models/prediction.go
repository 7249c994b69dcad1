package models

// ModelPrediction captures an individual model's output for one entity.
// Metadata carries side-channel values such as the pre-postprocessing raw score.
type ModelPrediction struct {
	ModelName string
	EntityID  string
	Score     float64
	Metadata  map[string]float64
}

// EnsembleScore is the combined score for an entity after ensembling.
// Breakdown keys are exactly the models that predicted for this entity.
type EnsembleScore struct {
	EntityID  string
	Score     float64
	Breakdown map[string]float64
}

// AnomalyScore is one detector's score for one feature vector.
type AnomalyScore struct {
	EntityID     string
	DetectorName string
	Score        float64
}

// Explanation is a lightweight per-entity account of the combined score.
type Explanation struct {
	EntityID    string
	TopFeatures []string
	Narrative   string
}

// EvaluationResult holds classification metrics against ground truth.
type EvaluationResult struct {
	Precision float64
	Recall    float64
	F1        float64
}
