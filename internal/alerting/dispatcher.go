package alerting

import (
	"context"
	"fmt"
	"sync"

	"PolyWatch/internal/domain/models"
)

// Default severity breakpoints, evaluated highest-first.
const (
	DefaultCriticalThreshold = 0.9
	DefaultHighThreshold     = 0.7
	mediumThreshold          = 0.5
)

// Sink receives emitted alerts. Delivery is at-least-once; downstream
// transport lives behind this boundary.
type Sink interface {
	Deliver(ctx context.Context, alerts []models.Alert) error
}

// Dispatcher classifies combined scores into severity tiers and delivers the
// resulting alerts. Info-tier entities are filtered out before emission: info
// is an internal tier, not an alert.
type Dispatcher struct {
	criticalThreshold float64
	highThreshold     float64
	sinks             []Sink

	mu   sync.Mutex
	sent []models.Alert
}

func NewDispatcher(critical, high float64, sinks ...Sink) *Dispatcher {
	if critical <= 0 {
		critical = DefaultCriticalThreshold
	}
	if high <= 0 {
		high = DefaultHighThreshold
	}
	return &Dispatcher{criticalThreshold: critical, highThreshold: high, sinks: sinks}
}

// Severity maps a combined score to a tier.
func (d *Dispatcher) Severity(score float64) string {
	switch {
	case score >= d.criticalThreshold:
		return models.SeverityCritical
	case score >= d.highThreshold:
		return models.SeverityHigh
	case score >= mediumThreshold:
		return models.SeverityMedium
	default:
		return models.SeverityInfo
	}
}

// CreateAlerts classifies ensemble scores and formats alert messages,
// dropping info-tier entities.
func (d *Dispatcher) CreateAlerts(scores []models.EnsembleScore) []models.Alert {
	alerts := make([]models.Alert, 0, len(scores))
	for _, s := range scores {
		severity := d.Severity(s.Score)
		if severity == models.SeverityInfo {
			continue
		}
		alerts = append(alerts, models.Alert{
			EntityID: s.EntityID,
			Score:    s.Score,
			Severity: severity,
			Message:  fmt.Sprintf("Account %s flagged with severity %s (score=%.2f).", s.EntityID, severity, s.Score),
		})
	}
	return alerts
}

// Dispatch delivers alerts to every configured sink and records them as sent.
// A sink failure propagates; it is not swallowed as an empty result.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, alerts); err != nil {
			return fmt.Errorf("dispatch alerts: %w", err)
		}
	}
	d.mu.Lock()
	d.sent = append(d.sent, alerts...)
	d.mu.Unlock()
	return nil
}

// Sent returns all alerts dispatched so far.
func (d *Dispatcher) Sent() []models.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Alert, len(d.sent))
	copy(out, d.sent)
	return out
}

// MemorySink records delivered alerts in memory. Used for run-state
// inspection and tests.
type MemorySink struct {
	mu     sync.Mutex
	alerts []models.Alert
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Deliver(_ context.Context, alerts []models.Alert) error {
	s.mu.Lock()
	s.alerts = append(s.alerts, alerts...)
	s.mu.Unlock()
	return nil
}

func (s *MemorySink) Alerts() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}
