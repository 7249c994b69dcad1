package zoo

import (
	"context"
	"fmt"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/service"
)

// Wrapper standardizes inference over a predictive model: it computes the raw
// score and applies the optional postprocess (e.g. calibration). The raw score
// is kept in prediction metadata for auditability.
type Wrapper struct {
	Name        string
	Model       service.PredictiveModel
	Postprocess service.Postprocess
}

// Predict scores one feature vector.
func (w *Wrapper) Predict(ctx context.Context, vec models.FeatureVector) (models.ModelPrediction, error) {
	raw, err := w.Model.PredictProba(ctx, vec.Features)
	if err != nil {
		return models.ModelPrediction{}, fmt.Errorf("model %s predict: %w", w.Name, err)
	}
	score := raw
	if w.Postprocess != nil {
		score = w.Postprocess(raw)
	}
	return models.ModelPrediction{
		ModelName: w.Name,
		EntityID:  vec.EntityID,
		Score:     score,
		Metadata:  map[string]float64{"raw_score": raw},
	}, nil
}

// Registry is a name-keyed collection of wrapped models. Names are unique
// identifiers: registering a duplicate is a configuration error, not a
// latest-wins overwrite. Iteration order carries no meaning.
type Registry struct {
	models map[string]*Wrapper
}

func NewRegistry(wrappers ...*Wrapper) (*Registry, error) {
	r := &Registry{models: make(map[string]*Wrapper)}
	for _, w := range wrappers {
		if err := r.Register(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a wrapped model. Fails fast on duplicate names.
func (r *Registry) Register(w *Wrapper) error {
	if _, ok := r.models[w.Name]; ok {
		return fmt.Errorf("model %s already registered", w.Name)
	}
	r.models[w.Name] = w
	return nil
}

// Get returns the wrapper for name.
func (r *Registry) Get(name string) (*Wrapper, bool) {
	w, ok := r.models[name]
	return w, ok
}

// Models returns all registered wrappers in unspecified order.
func (r *Registry) Models() []*Wrapper {
	out := make([]*Wrapper, 0, len(r.models))
	for _, w := range r.models {
		out = append(out, w)
	}
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int { return len(r.models) }
