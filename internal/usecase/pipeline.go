package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PolyWatch/internal/alerting"
	"PolyWatch/internal/domain/models"
	domrepo "PolyWatch/internal/domain/repository"
	"PolyWatch/internal/services/anomaly"
	"PolyWatch/internal/services/ensemble"
	"PolyWatch/internal/services/explain"
	"PolyWatch/internal/services/features"
	"PolyWatch/internal/services/graph"
	"PolyWatch/internal/services/sequence"
	"PolyWatch/internal/services/zoo"
	applogger "PolyWatch/pkg/logger"
)

// TradeSource supplies the batch of recent trades for an inference run.
type TradeSource interface {
	RecentTrades(ctx context.Context) ([]models.TradeRecord, error)
}

// Pipeline coordinates end-to-end inference, scoring, and alerting. The
// sequence encoder, graph builder, anomaly engine, and explainer are each
// independently optional: a nil component skips its stage, while a configured
// component's failure propagates.
type Pipeline struct {
	source     TradeSource
	store      *features.Store
	registry   *zoo.Registry
	combiner   *ensemble.Combiner
	dispatcher *alerting.Dispatcher

	encoder   *sequence.Encoder
	grapher   *graph.Builder
	anomalies *anomaly.Engine
	explainer *explain.Explainer

	marketsOfInterest map[string]struct{}
	metrics           domrepo.Metrics
	scoreCache        domrepo.ScoreCache
	logger            *applogger.Logger

	mu             sync.RWMutex
	lastAlerts     []models.Alert
	lastExplain    []models.Explanation
	lastAnomalies  []models.AnomalyScore
	lastScores     []models.EnsembleScore
	lastRunStarted time.Time
}

// PipelineOption configures optional pipeline components.
type PipelineOption func(*Pipeline)

func WithSequenceEncoder(e *sequence.Encoder) PipelineOption {
	return func(p *Pipeline) { p.encoder = e }
}

func WithGraphBuilder(b *graph.Builder) PipelineOption {
	return func(p *Pipeline) { p.grapher = b }
}

func WithAnomalyEngine(e *anomaly.Engine) PipelineOption {
	return func(p *Pipeline) { p.anomalies = e }
}

func WithExplainer(e *explain.Explainer) PipelineOption {
	return func(p *Pipeline) { p.explainer = e }
}

// WithMarketsOfInterest restricts inference to the given markets. An empty
// list means no filter.
func WithMarketsOfInterest(markets []string) PipelineOption {
	return func(p *Pipeline) {
		if len(markets) == 0 {
			return
		}
		p.marketsOfInterest = make(map[string]struct{}, len(markets))
		for _, m := range markets {
			p.marketsOfInterest[m] = struct{}{}
		}
	}
}

func WithMetrics(m domrepo.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

func WithScoreCache(c domrepo.ScoreCache) PipelineOption {
	return func(p *Pipeline) { p.scoreCache = c }
}

func WithLogger(l *applogger.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline builds a pipeline from its required components.
func NewPipeline(
	source TradeSource,
	store *features.Store,
	registry *zoo.Registry,
	combiner *ensemble.Combiner,
	dispatcher *alerting.Dispatcher,
	opts ...PipelineOption,
) (*Pipeline, error) {
	if source == nil || store == nil || registry == nil || combiner == nil || dispatcher == nil {
		return nil, fmt.Errorf("pipeline: missing required component")
	}
	p := &Pipeline{
		source:     source,
		store:      store,
		registry:   registry,
		combiner:   combiner,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// RunInference executes one inference run over the source's recent trades and
// returns the dispatched alerts. It either returns a complete result set or an
// error; there is no partial-alert mode.
func (p *Pipeline) RunInference(ctx context.Context) ([]models.Alert, error) {
	return p.runInference(ctx, nil)
}

// RunInferenceFiltered is RunInference restricted to the given markets for
// this run only. An empty list falls back to the configured filter.
func (p *Pipeline) RunInferenceFiltered(ctx context.Context, markets []string) ([]models.Alert, error) {
	var filter map[string]struct{}
	if len(markets) > 0 {
		filter = make(map[string]struct{}, len(markets))
		for _, m := range markets {
			filter[m] = struct{}{}
		}
	}
	return p.runInference(ctx, filter)
}

func (p *Pipeline) runInference(ctx context.Context, marketFilter map[string]struct{}) ([]models.Alert, error) {
	start := time.Now()

	trades, err := p.loadTrades(ctx, marketFilter)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}

	vectors := p.store.Compute(trades)
	vectors = p.enrich(trades, vectors)

	predictions, err := p.generatePredictions(ctx, vectors)
	if err != nil {
		return nil, err
	}

	var anomalyScores []models.AnomalyScore
	if p.anomalies != nil {
		anomalyScores = p.anomalies.Run(vectors)
	}

	combined := p.combiner.Combine(predictions)
	explanations := p.buildExplanations(vectors, combined)

	alerts := p.dispatcher.CreateAlerts(combined)
	if err := p.dispatcher.Dispatch(ctx, alerts); err != nil {
		return nil, err
	}

	if p.scoreCache != nil {
		if err := p.scoreCache.SetScores(ctx, combined); err != nil {
			return nil, fmt.Errorf("cache scores: %w", err)
		}
	}

	p.mu.Lock()
	p.lastAlerts = alerts
	p.lastExplain = explanations
	p.lastAnomalies = anomalyScores
	p.lastScores = combined
	p.lastRunStarted = start
	p.mu.Unlock()

	p.record(alerts, combined, time.Since(start))
	if p.logger != nil {
		p.logger.Info("inference run complete",
			applogger.Int("trades", len(trades)),
			applogger.Int("entities", len(combined)),
			applogger.Int("alerts", len(alerts)),
		)
	}
	return alerts, nil
}

// RunBacktest runs the feature/prediction path over a historical batch and
// returns diagnostic metrics instead of alerting. Never produces alerts.
func (p *Pipeline) RunBacktest(ctx context.Context, historical []models.TradeRecord) (map[string]float64, error) {
	start := time.Now()

	vectors := p.store.Compute(historical)
	vectors = p.enrich(historical, vectors)

	predictions, err := p.generatePredictions(ctx, vectors)
	if err != nil {
		return nil, err
	}

	metrics := p.combiner.AggregateStatistics(predictions)

	if p.grapher != nil {
		g, err := p.grapher.BuildWalletGraph(ctx, historical)
		if err != nil {
			return nil, fmt.Errorf("wallet graph: %w", err)
		}
		communities := p.grapher.DetectCommunities(g)
		metrics["communities_detected"] = float64(len(communities))
		if p.metrics != nil {
			p.metrics.RecordCommunities(len(communities))
		}
	}

	if p.anomalies != nil {
		anomalyScores := p.anomalies.Run(vectors)
		if len(anomalyScores) > 0 {
			sum := 0.0
			for _, s := range anomalyScores {
				sum += s.Score
			}
			metrics["avg_anomaly_score"] = sum / float64(len(anomalyScores))
		}
	}

	if p.metrics != nil {
		p.metrics.RecordRunDuration("backtest", time.Since(start).Seconds())
	}
	return metrics, nil
}

// LastAlerts returns the alerts retained from the most recent inference run.
func (p *Pipeline) LastAlerts() []models.Alert {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Alert, len(p.lastAlerts))
	copy(out, p.lastAlerts)
	return out
}

// LastExplanations returns the explanations retained from the last run.
func (p *Pipeline) LastExplanations() []models.Explanation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Explanation, len(p.lastExplain))
	copy(out, p.lastExplain)
	return out
}

// LastScores returns the combined scores retained from the last run.
func (p *Pipeline) LastScores() []models.EnsembleScore {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.EnsembleScore, len(p.lastScores))
	copy(out, p.lastScores)
	return out
}

// LastAnomalyScores returns the anomaly scores retained from the last run.
func (p *Pipeline) LastAnomalyScores() []models.AnomalyScore {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.AnomalyScore, len(p.lastAnomalies))
	copy(out, p.lastAnomalies)
	return out
}

func (p *Pipeline) loadTrades(ctx context.Context, override map[string]struct{}) ([]models.TradeRecord, error) {
	trades, err := p.source.RecentTrades(ctx)
	if err != nil {
		return nil, err
	}
	filter := p.marketsOfInterest
	if override != nil {
		filter = override
	}
	if filter == nil {
		return trades, nil
	}
	filtered := make([]models.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if _, ok := filter[t.MarketID]; ok {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (p *Pipeline) enrich(trades []models.TradeRecord, vectors []models.FeatureVector) []models.FeatureVector {
	if p.encoder == nil {
		return vectors
	}
	embeddings := p.encoder.Encode(trades)
	return p.encoder.Enrich(vectors, embeddings)
}

// generatePredictions runs every registered model over every vector. Any
// model failure aborts the run.
func (p *Pipeline) generatePredictions(ctx context.Context, vectors []models.FeatureVector) ([]models.ModelPrediction, error) {
	predictions := make([]models.ModelPrediction, 0, len(vectors)*p.registry.Len())
	for _, vec := range vectors {
		for _, model := range p.registry.Models() {
			pred, err := model.Predict(ctx, vec)
			if err != nil {
				return nil, err
			}
			predictions = append(predictions, pred)
		}
	}
	return predictions, nil
}

// buildExplanations looks up each scored entity's latest feature vector.
// Entities with no matching vector are skipped; that is the documented
// missing-data fallback, not an error.
func (p *Pipeline) buildExplanations(vectors []models.FeatureVector, scores []models.EnsembleScore) []models.Explanation {
	if p.explainer == nil {
		return nil
	}
	lookup := make(map[string]models.FeatureVector, len(vectors))
	for _, v := range vectors {
		lookup[v.EntityID] = v
	}
	explanations := make([]models.Explanation, 0, len(scores))
	for _, s := range scores {
		vec, ok := lookup[s.EntityID]
		if !ok {
			continue
		}
		explanations = append(explanations, p.explainer.Build(vec.Features, s))
	}
	return explanations
}

func (p *Pipeline) record(alerts []models.Alert, combined []models.EnsembleScore, took time.Duration) {
	if p.metrics == nil {
		return
	}
	for _, a := range alerts {
		p.metrics.RecordAlert(a.Severity)
	}
	for _, s := range combined {
		p.metrics.RecordEntityScore(s.EntityID, s.Score)
	}
	p.metrics.RecordRunDuration("inference", took.Seconds())
}
