package models

import "time"

// TradeRecord represents a single trade on the venue. Records are produced by
// the ingestion layer and consumed read-only by every detection component.
type TradeRecord struct {
	TradeID   string
	AccountID string
	MarketID  string
	Timestamp time.Time
	Outcome   string
	Size      float64
	Price     float64
}

// MarketResolution represents a market resolution event.
type MarketResolution struct {
	MarketID        string
	ResolutionTime  time.Time
	ResolvedOutcome string
}
