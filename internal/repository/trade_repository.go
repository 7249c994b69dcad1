package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	pkgkafka "PolyWatch/pkg/kafka"
)

// ClickHouseTradeStorage implements TradeStorage for ClickHouse.
type ClickHouseTradeStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseTradeStorage creates ClickHouse trade storage.
func NewClickHouseTradeStorage(db *sql.DB, table string) repository.TradeStorage {
	return &ClickHouseTradeStorage{db: db, table: table}
}

func (s *ClickHouseTradeStorage) Store(ctx context.Context, t *models.TradeRecord) error {
	return s.StoreBatch(ctx, []*models.TradeRecord{t})
}

func (s *ClickHouseTradeStorage) StoreBatch(ctx context.Context, trades []*models.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips. Chunked at 2000 rows.
	const chunkSize = 2000
	for start := 0; start < len(trades); start += chunkSize {
		end := start + chunkSize
		if end > len(trades) {
			end = len(trades)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, t := range trades[start:end] {
			if t == nil || t.TradeID == "" || t.AccountID == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				t.TradeID,
				t.AccountID,
				t.MarketID,
				t.Timestamp,
				t.Outcome,
				t.Size,
				t.Price,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (trade_id, account_id, market_id, ts, outcome, size, price) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseTradeStorage) Query(ctx context.Context, marketID string, from, to time.Time, limit int) ([]models.TradeRecord, error) {
	q := fmt.Sprintf("SELECT trade_id, account_id, market_id, ts, outcome, size, price FROM %s WHERE market_id = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, marketID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		if err := rows.Scan(&t.TradeID, &t.AccountID, &t.MarketID, &t.Timestamp, &t.Outcome, &t.Size, &t.Price); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (s *ClickHouseTradeStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTradeStorage) Close() error {
	return nil // pool managed by pkg/clickhouse
}

// KafkaAlertPublisher implements Publisher for Kafka.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a Kafka alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(alerts))
	for i, a := range alerts {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(a.EntityID),
			Value: a,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
