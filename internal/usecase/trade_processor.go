package usecase

import (
	"context"
	"fmt"
	"time"

	"PolyWatch/internal/domain/models"
	drepo "PolyWatch/internal/domain/repository"
	pkgkafka "PolyWatch/pkg/kafka"
)

// TradeProcessor routes ingested trades to the configured backend and keeps a
// rolling window available for inference runs.
type TradeProcessor struct {
	producer *pkgkafka.Producer
	topic    string
	store    drepo.TradeStorage
	buffer   *RecentTradesBuffer
	metrics  drepo.Metrics
	backend  string
}

// NewTradeProcessor creates a new TradeProcessor instance.
func NewTradeProcessor(
	producer *pkgkafka.Producer,
	topic string,
	store drepo.TradeStorage,
	buffer *RecentTradesBuffer,
	metrics drepo.Metrics,
	backend string,
) *TradeProcessor {
	return &TradeProcessor{
		producer: producer,
		topic:    topic,
		store:    store,
		buffer:   buffer,
		metrics:  metrics,
		backend:  backend,
	}
}

// Process routes a single trade to the configured backend.
func (p *TradeProcessor) Process(ctx context.Context, t *models.TradeRecord) error {
	if t == nil {
		return fmt.Errorf("trade is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.producer.Publish(ctx, p.topic, []byte(t.AccountID), tradeMessage(t))
	case "clickhouse":
		err = p.store.Store(ctx, t)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process trade: %w", err)
	}

	if p.buffer != nil {
		p.buffer.Add(*t)
	}
	p.metrics.RecordRunDuration("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple trades in one backend call.
func (p *TradeProcessor) ProcessBatch(ctx context.Context, trades []*models.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		msgs := make([]pkgkafka.Message, len(trades))
		for i, t := range trades {
			msgs[i] = pkgkafka.Message{Key: []byte(t.AccountID), Value: tradeMessage(t)}
		}
		err = p.producer.PublishBatch(ctx, p.topic, msgs)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, trades)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	if p.buffer != nil {
		for _, t := range trades {
			p.buffer.Add(*t)
		}
	}
	p.metrics.RecordRunDuration("process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *TradeProcessor) Close() {
	if p.producer != nil {
		_ = p.producer.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

func tradeMessage(t *models.TradeRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":      t.TradeID,
		"account": t.AccountID,
		"market":  t.MarketID,
		"outcome": t.Outcome,
		"size":    t.Size,
		"price":   t.Price,
		"t":       t.Timestamp.UnixMilli(),
	}
}
