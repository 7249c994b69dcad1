package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/alerting"
	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/services/anomaly"
	"PolyWatch/internal/services/ensemble"
	"PolyWatch/internal/services/explain"
	"PolyWatch/internal/services/features"
	"PolyWatch/internal/services/graph"
	"PolyWatch/internal/services/sequence"
	"PolyWatch/internal/services/zoo"
)

type staticSource struct {
	trades []models.TradeRecord
	err    error
}

func (s *staticSource) RecentTrades(context.Context) ([]models.TradeRecord, error) {
	return s.trades, s.err
}

type fixedModel struct {
	name  string
	score float64
	err   error
}

func (m *fixedModel) Name() string { return m.name }
func (m *fixedModel) PredictProba(context.Context, map[string]float64) (float64, error) {
	return m.score, m.err
}

type fakeMetrics struct {
	alerts      int
	errors      int
	communities int
}

func (m *fakeMetrics) RecordTradeIngested(string)        {}
func (m *fakeMetrics) RecordAlert(string)                { m.alerts++ }
func (m *fakeMetrics) RecordError(string)                { m.errors++ }
func (m *fakeMetrics) RecordRunDuration(string, float64) {}
func (m *fakeMetrics) RecordCommunities(n int)           { m.communities = n }
func (m *fakeMetrics) RecordEntityScore(string, float64) {}

type fakeScoreCache struct {
	scores map[string]float64
	err    error
}

func (c *fakeScoreCache) SetScores(_ context.Context, scores []models.EnsembleScore) error {
	if c.err != nil {
		return c.err
	}
	if c.scores == nil {
		c.scores = make(map[string]float64)
	}
	for _, s := range scores {
		c.scores[s.EntityID] = s.Score
	}
	return nil
}

func (c *fakeScoreCache) GetScore(_ context.Context, entityID string) (float64, bool, error) {
	v, ok := c.scores[entityID]
	return v, ok, nil
}

func sampleTrades() []models.TradeRecord {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.TradeRecord{
		{TradeID: "t1", AccountID: "acc-1", MarketID: "m1", Timestamp: ts, Outcome: "yes", Size: 100, Price: 0.3},
		{TradeID: "t2", AccountID: "acc-2", MarketID: "m1", Timestamp: ts, Outcome: "yes", Size: 100, Price: 0.3},
		{TradeID: "t3", AccountID: "acc-1", MarketID: "m2", Timestamp: ts.Add(time.Minute), Outcome: "no", Size: 50, Price: 0.6},
	}
}

func newTestPipeline(t *testing.T, score float64, opts ...PipelineOption) (*Pipeline, *alerting.MemorySink) {
	t.Helper()
	registry, err := zoo.NewRegistry(&zoo.Wrapper{
		Name:        "fixed",
		Model:       &fixedModel{name: "fixed", score: score},
		Postprocess: zoo.Clamp01,
	})
	require.NoError(t, err)

	sink := alerting.NewMemorySink()
	dispatcher := alerting.NewDispatcher(0.9, 0.7, sink)

	p, err := NewPipeline(
		&staticSource{trades: sampleTrades()},
		features.NewStore(),
		registry,
		ensemble.NewCombiner(nil),
		dispatcher,
		opts...,
	)
	require.NoError(t, err)
	return p, sink
}

func TestNewPipelineMissingComponent(t *testing.T) {
	_, err := NewPipeline(nil, features.NewStore(), nil, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required component")
}

func TestRunInferenceEmitsAlerts(t *testing.T) {
	p, sink := newTestPipeline(t, 0.95)
	alerts, err := p.RunInference(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2) // acc-1 and acc-2
	for _, a := range alerts {
		require.Equal(t, models.SeverityCritical, a.Severity)
	}
	require.Len(t, sink.Alerts(), 2)
	require.Len(t, p.LastAlerts(), 2)
	require.Len(t, p.LastScores(), 2)
}

func TestRunInferenceInfoScoresProduceNoAlerts(t *testing.T) {
	p, sink := newTestPipeline(t, 0.1)
	alerts, err := p.RunInference(context.Background())
	require.NoError(t, err)
	require.Empty(t, alerts)
	require.Empty(t, sink.Alerts())
	// scores are still retained even when nothing alerts
	require.Len(t, p.LastScores(), 2)
}

func TestRunInferenceOptionalStagesSkippedWhenNil(t *testing.T) {
	p, _ := newTestPipeline(t, 0.95)
	_, err := p.RunInference(context.Background())
	require.NoError(t, err)
	require.Empty(t, p.LastAnomalyScores())
	require.Empty(t, p.LastExplanations())
}

func TestRunInferenceWithOptionalStages(t *testing.T) {
	p, _ := newTestPipeline(t, 0.95,
		WithSequenceEncoder(sequence.NewEncoder(4)),
		WithAnomalyEngine(anomaly.NewEngine(anomaly.SizeSpikeDetector{}, anomaly.ProfitOutlierDetector{})),
		WithExplainer(explain.New()),
	)
	_, err := p.RunInference(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, p.LastAnomalyScores())
	require.Len(t, p.LastExplanations(), 2)
}

func TestRunInferenceModelFailureAborts(t *testing.T) {
	registry, err := zoo.NewRegistry(&zoo.Wrapper{
		Name:  "broken",
		Model: &fixedModel{name: "broken", err: errors.New("model down")},
	})
	require.NoError(t, err)

	sink := alerting.NewMemorySink()
	p, err := NewPipeline(
		&staticSource{trades: sampleTrades()},
		features.NewStore(),
		registry,
		ensemble.NewCombiner(nil),
		alerting.NewDispatcher(0.9, 0.7, sink),
	)
	require.NoError(t, err)

	_, err = p.RunInference(context.Background())
	require.Error(t, err)
	require.Empty(t, sink.Alerts())
	require.Empty(t, p.LastAlerts())
}

func TestRunInferenceSourceErrorPropagates(t *testing.T) {
	registry, err := zoo.NewRegistry(&zoo.Wrapper{Name: "fixed", Model: &fixedModel{name: "fixed", score: 0.5}})
	require.NoError(t, err)
	p, err := NewPipeline(
		&staticSource{err: errors.New("source down")},
		features.NewStore(),
		registry,
		ensemble.NewCombiner(nil),
		alerting.NewDispatcher(0.9, 0.7),
	)
	require.NoError(t, err)
	_, err = p.RunInference(context.Background())
	require.Error(t, err)
}

func TestRunInferenceScoreCache(t *testing.T) {
	cache := &fakeScoreCache{}
	p, _ := newTestPipeline(t, 0.95, WithScoreCache(cache))
	_, err := p.RunInference(context.Background())
	require.NoError(t, err)

	score, ok, err := cache.GetScore(context.Background(), "acc-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.95, score, 1e-9)
}

func TestRunInferenceScoreCacheErrorPropagates(t *testing.T) {
	cache := &fakeScoreCache{err: errors.New("cache down")}
	p, _ := newTestPipeline(t, 0.95, WithScoreCache(cache))
	_, err := p.RunInference(context.Background())
	require.Error(t, err)
}

func TestRunInferenceFilteredMarkets(t *testing.T) {
	p, _ := newTestPipeline(t, 0.95, WithExplainer(explain.New()))
	_, err := p.RunInferenceFiltered(context.Background(), []string{"m2"})
	require.NoError(t, err)
	// only acc-1 trades in m2
	require.Len(t, p.LastScores(), 1)
	require.Equal(t, "acc-1", p.LastScores()[0].EntityID)
}

func TestRunInferenceMarketsOfInterest(t *testing.T) {
	p, _ := newTestPipeline(t, 0.95, WithMarketsOfInterest([]string{"m1"}))
	_, err := p.RunInference(context.Background())
	require.NoError(t, err)
	require.Len(t, p.LastScores(), 2)
}

func TestRunBacktestMetrics(t *testing.T) {
	metrics := &fakeMetrics{}
	p, _ := newTestPipeline(t, 0.8,
		WithGraphBuilder(graph.NewBuilder()),
		WithAnomalyEngine(anomaly.NewEngine(anomaly.ProfitOutlierDetector{})),
		WithMetrics(metrics),
	)

	stats, err := p.RunBacktest(context.Background(), sampleTrades())
	require.NoError(t, err)
	require.InDelta(t, 0.8, stats["fixed"], 1e-9)
	require.Contains(t, stats, "communities_detected")
	require.Contains(t, stats, "avg_anomaly_score")
	// acc-1 and acc-2 co-trade identically in m1
	require.Equal(t, 1.0, stats["communities_detected"])
	require.Equal(t, 1, metrics.communities)
}

func TestRunBacktestNeverAlerts(t *testing.T) {
	p, sink := newTestPipeline(t, 0.99)
	_, err := p.RunBacktest(context.Background(), sampleTrades())
	require.NoError(t, err)
	require.Empty(t, sink.Alerts())
}
