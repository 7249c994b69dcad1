package usecase

import (
	"context"
	"encoding/json"
	"time"

	"PolyWatch/internal/domain/models"
	domrepo "PolyWatch/internal/domain/repository"
	pkgkafka "PolyWatch/pkg/kafka"
)

// KafkaTradesHandler consumes trade messages from Kafka and writes them to
// storage.
type KafkaTradesHandler struct {
	topic   string
	storage domrepo.TradeStorage
	metrics domrepo.Metrics
}

func NewKafkaTradesHandler(topic string, storage domrepo.TradeStorage, metrics domrepo.Metrics) *KafkaTradesHandler {
	return &KafkaTradesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaTradesHandler) Topic() string { return h.topic }

// incoming message schema: {id, account, market, outcome, size, price, t}
func (h *KafkaTradesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ID      string  `json:"id"`
		Account string  `json:"account"`
		Market  string  `json:"market"`
		Outcome string  `json:"outcome"`
		Size    float64 `json:"size"`
		Price   float64 `json:"price"`
		T       int64   `json:"t"` // ms
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	err := h.storage.Store(ctx, &models.TradeRecord{
		TradeID:   m.ID,
		AccountID: m.Account,
		MarketID:  m.Market,
		Timestamp: time.UnixMilli(m.T),
		Outcome:   m.Outcome,
		Size:      m.Size,
		Price:     m.Price,
	})
	h.metrics.RecordRunDuration("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordTradeIngested(m.Market)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTradesHandler)(nil)
