package usecase

import (
	"context"
	"sync"
	"time"

	"PolyWatch/internal/domain/models"
)

// RecentTradesBuffer is a bounded in-memory window of the most recently
// ingested trades. It backs inference runs so a run never has to touch
// storage.
type RecentTradesBuffer struct {
	mu     sync.RWMutex
	trades []models.TradeRecord
	max    int
	maxAge time.Duration
}

// NewRecentTradesBuffer creates a buffer holding at most max trades no older
// than maxAge. Zero values fall back to 10000 trades and 30 minutes.
func NewRecentTradesBuffer(max int, maxAge time.Duration) *RecentTradesBuffer {
	if max <= 0 {
		max = 10000
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &RecentTradesBuffer{max: max, maxAge: maxAge}
}

// Add appends a trade, evicting the oldest entries past capacity.
func (b *RecentTradesBuffer) Add(t models.TradeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trades = append(b.trades, t)
	if len(b.trades) > b.max {
		b.trades = b.trades[len(b.trades)-b.max:]
	}
}

// RecentTrades returns a copy of the buffered window, dropping entries older
// than maxAge.
func (b *RecentTradesBuffer) RecentTrades(_ context.Context) ([]models.TradeRecord, error) {
	cutoff := time.Now().Add(-b.maxAge)
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.TradeRecord, 0, len(b.trades))
	for _, t := range b.trades {
		if t.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Len returns the number of buffered trades.
func (b *RecentTradesBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.trades)
}

var _ TradeSource = (*RecentTradesBuffer)(nil)
