package repository

import (
	"context"
	"time"

	"PolyWatch/internal/domain/models"
)

// TradeStream is a live source of trade records (websocket or similar).
type TradeStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.TradeRecord, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// TradeStorage persists raw trades and serves historical batches for backtests.
type TradeStorage interface {
	Store(ctx context.Context, t *models.TradeRecord) error
	StoreBatch(ctx context.Context, trades []*models.TradeRecord) error
	Query(ctx context.Context, marketID string, from, to time.Time, limit int) ([]models.TradeRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertStorage persists emitted alerts and serves recent ones for the API.
type AlertStorage interface {
	StoreBatch(ctx context.Context, alerts []models.Alert) error
	Recent(ctx context.Context, limit int) ([]models.Alert, error)
}

// Publisher delivers alerts to downstream channels (at-least-once).
type Publisher interface {
	PublishAlerts(ctx context.Context, alerts []models.Alert) error
	Close() error
}

// ScoreCache keeps the latest combined score per entity.
type ScoreCache interface {
	SetScores(ctx context.Context, scores []models.EnsembleScore) error
	GetScore(ctx context.Context, entityID string) (float64, bool, error)
}

// Metrics records operational metrics for ingestion and detection runs.
type Metrics interface {
	RecordTradeIngested(marketID string)
	RecordAlert(severity string)
	RecordError(kind string)
	RecordRunDuration(kind string, seconds float64)
	RecordCommunities(n int)
	RecordEntityScore(entityID string, score float64)
}
