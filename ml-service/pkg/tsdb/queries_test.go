package tsdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plantpulse/ml-service/pkg/dto/telemetry"
)

func TestAlertsForReading(t *testing.T) {
	t.Run("AlertsForReading - Passed (every rule triggered)", func(t *testing.T) {
		alerts := alertsForReading("PUMP-7", 1700000000000, 96, 85, -0.8)

		assert.Len(t, alerts, 3)
		for _, alert := range alerts {
			assert.Equal(t, "PUMP-7", alert.MachineID)
			assert.Equal(t, int64(1700000000000), alert.Timestamp)
			assert.Equal(t, telemetry.StatusAnomaly, alert.Severity)
		}
		assert.Equal(t, "vibration", alerts[0].Metric)
		assert.Equal(t, 75.0, alerts[0].Threshold)
		assert.Equal(t, "High vibration: 96.0", alerts[0].Reason)
		assert.Equal(t, "temperature", alerts[1].Metric)
		assert.Equal(t, "High temperature: 85.0°C", alerts[1].Reason)
		assert.Equal(t, "ai_score", alerts[2].Metric)
		assert.Equal(t, "Low AI score: -0.800", alerts[2].Reason)
	})

	t.Run("AlertsForReading - Passed (vibration rule only)", func(t *testing.T) {
		alerts := alertsForReading("PUMP-7", 1700000000000, 80, 60, 0.0)

		assert.Len(t, alerts, 1)
		assert.Equal(t, "vibration", alerts[0].Metric)
		assert.Equal(t, 80.0, alerts[0].Value)
		assert.Equal(t, telemetry.StatusWarning, alerts[0].Severity)
	})

	t.Run("AlertsForReading - Passed (score rule only)", func(t *testing.T) {
		alerts := alertsForReading("PUMP-7", 1700000000000, 10, 45, -0.6)

		assert.Len(t, alerts, 1)
		assert.Equal(t, "ai_score", alerts[0].Metric)
		assert.Equal(t, -0.5, alerts[0].Threshold)
		assert.Equal(t, "Low AI score: -0.600", alerts[0].Reason)
		assert.Equal(t, telemetry.StatusAnomaly, alerts[0].Severity)
	})

	t.Run("AlertsForReading - Passed (no rule tripped falls back to generic score alert)", func(t *testing.T) {
		alerts := alertsForReading("PUMP-7", 1700000000000, 10, 45, 0.05)

		assert.Len(t, alerts, 1)
		assert.Equal(t, "ai_score", alerts[0].Metric)
		assert.Equal(t, 0.1, alerts[0].Threshold)
		assert.Equal(t, 0.05, alerts[0].Value)
		assert.Equal(t, "AI score: 0.050", alerts[0].Reason)
		assert.Equal(t, telemetry.StatusWarning, alerts[0].Severity)
	})

	t.Run("AlertsForReading - Passed (thresholds are exclusive)", func(t *testing.T) {
		alerts := alertsForReading("PUMP-7", 1700000000000, 75, 70, -0.5)

		assert.Len(t, alerts, 1)
		assert.Equal(t, "AI score: -0.500", alerts[0].Reason)
		assert.Equal(t, telemetry.StatusWarning, alerts[0].Severity)
	})
}

func TestPercentilesOf(t *testing.T) {
	t.Run("PercentilesOf - Passed (empty window)", func(t *testing.T) {
		assert.Empty(t, percentilesOf(nil))
	})

	t.Run("PercentilesOf - Passed (uniform scores)", func(t *testing.T) {
		scores := make([]float64, 0, 100)
		for i := 1; i <= 100; i++ {
			scores = append(scores, float64(i))
		}

		percentiles := percentilesOf(scores)

		assert.Len(t, percentiles, 4)
		assert.InDelta(t, 50, percentiles["p50"], 3)
		assert.InDelta(t, 90, percentiles["p90"], 3)
		assert.InDelta(t, 95, percentiles["p95"], 3)
		assert.InDelta(t, 99, percentiles["p99"], 3)
		assert.LessOrEqual(t, percentiles["p50"], percentiles["p90"])
		assert.LessOrEqual(t, percentiles["p90"], percentiles["p95"])
		assert.LessOrEqual(t, percentiles["p95"], percentiles["p99"])
	})

	t.Run("PercentilesOf - Passed (constant scores)", func(t *testing.T) {
		percentiles := percentilesOf([]float64{42, 42, 42, 42})

		assert.InDelta(t, 42, percentiles["p50"], 0.001)
		assert.InDelta(t, 42, percentiles["p99"], 0.001)
	})
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		fallback int
		ceiling  int
		expected int
	}{
		{"zero takes the fallback", 0, 20, 100, 20},
		{"negative takes the fallback", -5, 20, 100, 20},
		{"in range passes through", 30, 20, 100, 30},
		{"above the ceiling is capped", 1000, 50, 500, 500},
		{"ceiling itself passes through", 500, 50, 500, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeLimit(tt.limit, tt.fallback, tt.ceiling))
		})
	}
}

func TestReverseReadings(t *testing.T) {
	readings := []telemetry.ScoredReading{
		{SensorReading: telemetry.SensorReading{Timestamp: 3}},
		{SensorReading: telemetry.SensorReading{Timestamp: 2}},
		{SensorReading: telemetry.SensorReading{Timestamp: 1}},
	}

	reverseReadings(readings)

	assert.Equal(t, int64(1), readings[0].Timestamp)
	assert.Equal(t, int64(2), readings[1].Timestamp)
	assert.Equal(t, int64(3), readings[2].Timestamp)
}
