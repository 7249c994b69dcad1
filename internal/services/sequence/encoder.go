package sequence

import (
	"fmt"
	"math"
	"sort"

	"PolyWatch/internal/domain/models"
)

// DefaultDim is the embedding dimension used when none is configured.
const DefaultDim = 8

// Encoder produces fixed-dimension temporal embeddings from ordered trade
// histories via a summed sinusoidal positional basis. Identical input
// sequences always yield identical embeddings. Embeddings are not normalized
// by sequence length: busier accounts accumulate larger magnitudes.
type Encoder struct {
	dim int
}

func NewEncoder(dim int) *Encoder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Encoder{dim: dim}
}

// Encode groups trades by account, sorts each group by timestamp ascending,
// and emits one embedding per account.
func (e *Encoder) Encode(trades []models.TradeRecord) []models.SequenceEmbedding {
	sequences := make(map[string][]models.TradeRecord)
	order := make([]string, 0)
	for _, t := range trades {
		if _, ok := sequences[t.AccountID]; !ok {
			order = append(order, t.AccountID)
		}
		sequences[t.AccountID] = append(sequences[t.AccountID], t)
	}

	embeddings := make([]models.SequenceEmbedding, 0, len(sequences))
	for _, entityID := range order {
		embeddings = append(embeddings, models.SequenceEmbedding{
			EntityID: entityID,
			Values:   e.positionalEncoding(sequences[entityID]),
		})
	}
	return embeddings
}

// Enrich merges embeddings into feature vectors, adding one seq_<i> feature
// per dimension. Vectors whose entity has no embedding pass through unchanged;
// enrichment never mutates an input vector.
func (e *Encoder) Enrich(vectors []models.FeatureVector, embeddings []models.SequenceEmbedding) []models.FeatureVector {
	lookup := make(map[string]models.SequenceEmbedding, len(embeddings))
	for _, emb := range embeddings {
		lookup[emb.EntityID] = emb
	}

	enriched := make([]models.FeatureVector, 0, len(vectors))
	for _, vec := range vectors {
		emb, ok := lookup[vec.EntityID]
		if !ok {
			enriched = append(enriched, vec)
			continue
		}
		augmented := vec.CloneFeatures()
		for i, v := range emb.Values {
			augmented[fmt.Sprintf("seq_%d", i)] = v
		}
		enriched = append(enriched, models.FeatureVector{
			EntityID: vec.EntityID,
			Features: augmented,
			AsOf:     vec.AsOf,
		})
	}
	return enriched
}

// positionalEncoding sums the standard alternating sine/cosine basis over each
// trade's position in the chronologically sorted sequence. Wavelengths scale
// by dimension-index pair with base 10000.
func (e *Encoder) positionalEncoding(trades []models.TradeRecord) []float64 {
	sorted := make([]models.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	values := make([]float64, e.dim)
	for position := range sorted {
		for idx := 0; idx < e.dim; idx++ {
			angle := float64(position) / math.Pow(10000, float64(2*(idx/2))/float64(e.dim))
			if idx%2 == 0 {
				values[idx] += math.Sin(angle)
			} else {
				values[idx] += math.Cos(angle)
			}
		}
	}
	return values
}
