package alerting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"PolyWatch/internal/domain/models"
)

func TestSeverityBoundaries(t *testing.T) {
	d := NewDispatcher(0, 0) // defaults 0.9 / 0.7
	cases := []struct {
		score float64
		want  string
	}{
		{0.95, models.SeverityCritical},
		{0.9, models.SeverityCritical},
		{0.89999, models.SeverityHigh},
		{0.7, models.SeverityHigh},
		{0.69999, models.SeverityMedium},
		{0.5, models.SeverityMedium},
		{0.49999, models.SeverityInfo},
		{0.0, models.SeverityInfo},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, d.Severity(tc.score), "score %v", tc.score)
	}
}

func TestCreateAlertsFiltersInfo(t *testing.T) {
	d := NewDispatcher(0.9, 0.7)
	alerts := d.CreateAlerts([]models.EnsembleScore{
		{EntityID: "hot", Score: 0.95},
		{EntityID: "warm", Score: 0.6},
		{EntityID: "cold", Score: 0.2},
	})
	require.Len(t, alerts, 2)
	require.Equal(t, "hot", alerts[0].EntityID)
	require.Equal(t, models.SeverityCritical, alerts[0].Severity)
	require.Equal(t, "Account hot flagged with severity critical (score=0.95).", alerts[0].Message)
	require.Equal(t, models.SeverityMedium, alerts[1].Severity)
}

func TestDispatchDeliversToAllSinks(t *testing.T) {
	first := NewMemorySink()
	second := NewMemorySink()
	d := NewDispatcher(0.9, 0.7, first, second)

	alerts := []models.Alert{{EntityID: "a", Score: 0.8, Severity: models.SeverityHigh}}
	require.NoError(t, d.Dispatch(context.Background(), alerts))
	require.Len(t, first.Alerts(), 1)
	require.Len(t, second.Alerts(), 1)
	require.Len(t, d.Sent(), 1)
}

type failingSink struct{}

func (failingSink) Deliver(context.Context, []models.Alert) error {
	return errors.New("sink down")
}

func TestDispatchSinkErrorPropagates(t *testing.T) {
	d := NewDispatcher(0.9, 0.7, failingSink{})
	err := d.Dispatch(context.Background(), []models.Alert{{EntityID: "a"}})
	require.Error(t, err)
	require.Empty(t, d.Sent())
}

func TestDispatchNoAlertsNoop(t *testing.T) {
	d := NewDispatcher(0.9, 0.7, failingSink{})
	require.NoError(t, d.Dispatch(context.Background(), nil))
}

func TestNewDispatcherThresholdOverrides(t *testing.T) {
	d := NewDispatcher(0.95, 0.8)
	require.Equal(t, models.SeverityHigh, d.Severity(0.9))
	require.Equal(t, models.SeverityMedium, d.Severity(0.79))
}
