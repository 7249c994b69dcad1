package features

import (
	"strings"
	"sync"

	"PolyWatch/internal/domain/models"
	"PolyWatch/pkg/util"
)

// Feature names produced by the engine.
const (
	FeatAvgTradeSize = "avg_trade_size"
	FeatProfitProxy  = "profit_proxy"
	FeatTimeToRes    = "time_to_resolution_est"
)

// emaAlpha is the smoothing factor of the rolling trade-size average:
// new = alpha*current + (1-alpha)*previous.
const emaAlpha = 0.5

// winningOutcomes are matched case-insensitively when signing the profit proxy.
var winningOutcomes = map[string]struct{}{
	"yes": {},
	"win": {},
}

// Store is the in-memory feature engine. It computes per-record feature
// vectors and keeps a per-account history so repeated calls are cumulative:
// the rolling average depends on what earlier batches stored. Callers must
// feed each account's trades in chronological order.
type Store struct {
	mu      sync.RWMutex
	storage map[string][]models.FeatureVector
}

func NewStore() *Store {
	return &Store{storage: make(map[string][]models.FeatureVector)}
}

// Compute generates one feature vector per trade record, in batch order, and
// appends each to the owning account's history.
func (s *Store) Compute(trades []models.TradeRecord) []models.FeatureVector {
	computed := make([]models.FeatureVector, 0, len(trades))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, trade := range trades {
		vec := models.FeatureVector{
			EntityID: trade.AccountID,
			Features: map[string]float64{
				FeatAvgTradeSize: s.rollingAverage(trade.AccountID, trade.Size),
				FeatProfitProxy:  profitProxy(trade),
				FeatTimeToRes:    timeToResolutionProxy(trade),
			},
			AsOf: trade.Timestamp,
		}
		s.storage[trade.AccountID] = append(s.storage[trade.AccountID], vec)
		computed = append(computed, vec)
	}
	return computed
}

// Latest returns the most recent feature vector for an entity. Read-only; no
// computation happens on lookup.
func (s *Store) Latest(entityID string) (models.FeatureVector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.storage[entityID]
	if len(history) == 0 {
		return models.FeatureVector{}, false
	}
	return history[len(history)-1], true
}

// History returns the number of stored vectors for an entity.
func (s *Store) History(entityID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.storage[entityID])
}

// rollingAverage returns the EMA of trade size for the account. With no prior
// history the average equals the current size. Caller holds s.mu.
func (s *Store) rollingAverage(accountID string, size float64) float64 {
	history := s.storage[accountID]
	if len(history) == 0 {
		return size
	}
	last, ok := history[len(history)-1].Features[FeatAvgTradeSize]
	if !ok {
		last = size
	}
	return (1-emaAlpha)*last + emaAlpha*size
}

// profitProxy approximates profitability while final outcomes are unknown:
// +(1-price) for a winning-direction trade, -(1-price) otherwise.
func profitProxy(trade models.TradeRecord) float64 {
	direction := -1.0
	if _, ok := winningOutcomes[strings.ToLower(trade.Outcome)]; ok {
		direction = 1.0
	}
	return direction * (1.0 - trade.Price)
}

// timeToResolutionProxy is a placeholder for the unavailable true
// time-to-resolution signal: seconds since local midnight, floored at 1.
func timeToResolutionProxy(trade models.TradeRecord) float64 {
	sec := util.SecondsSinceMidnight(trade.Timestamp)
	if sec < 1.0 {
		return 1.0
	}
	return sec
}
