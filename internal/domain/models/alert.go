package models

// Severity tiers derived from a combined score. Info is an internal tier and
// never appears on an emitted alert.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityInfo     = "info"
)

// Alert is the terminal output of one inference run for one entity.
type Alert struct {
	EntityID string  `json:"entity_id"`
	Score    float64 `json:"score"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
}
