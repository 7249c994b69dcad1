package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
)

// ClickHouseAlertStorage implements AlertStorage for ClickHouse.
type ClickHouseAlertStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseAlertStorage creates ClickHouse alert storage.
func NewClickHouseAlertStorage(db *sql.DB, table string) repository.AlertStorage {
	return &ClickHouseAlertStorage{db: db, table: table}
}

func (s *ClickHouseAlertStorage) StoreBatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	values := make([]string, 0, len(alerts))
	args := make([]interface{}, 0, len(alerts)*5)
	now := time.Now()
	for _, a := range alerts {
		values = append(values, "(?, ?, ?, ?, ?)")
		args = append(args, a.EntityID, a.Score, a.Severity, a.Message, now)
	}
	q := fmt.Sprintf("INSERT INTO %s (entity_id, score, severity, message, created_at) VALUES %s",
		s.table, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseAlertStorage) Recent(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf("SELECT entity_id, score, severity, message FROM %s ORDER BY created_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.EntityID, &a.Score, &a.Severity, &a.Message); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// SchemaStatements returns idempotent DDL for the trade and alert tables.
func SchemaStatements(tradeTable, alertTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			trade_id   String,
			account_id String,
			market_id  String,
			ts         DateTime64(3),
			outcome    String,
			size       Float64,
			price      Float64
		) ENGINE = MergeTree()
		ORDER BY (market_id, ts)`, tradeTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			entity_id  String,
			score      Float64,
			severity   String,
			message    String,
			created_at DateTime64(3)
		) ENGINE = MergeTree()
		ORDER BY (created_at)`, alertTable),
	}
}
