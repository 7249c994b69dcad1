package models

import "time"

// FeatureVector holds computed features for one entity at one point in time.
// Enrichment always produces a new vector; an existing vector is never mutated.
type FeatureVector struct {
	EntityID string
	Features map[string]float64
	AsOf     time.Time
}

// CloneFeatures returns a copy of the feature map for safe enrichment.
func (v FeatureVector) CloneFeatures() map[string]float64 {
	out := make(map[string]float64, len(v.Features))
	for k, val := range v.Features {
		out[k] = val
	}
	return out
}

// SequenceEmbedding is a fixed-dimension temporal embedding for one entity,
// valid only for the encoding call that produced it.
type SequenceEmbedding struct {
	EntityID string
	Values   []float64
}
