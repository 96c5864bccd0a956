package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name         string
		vibration    float64
		temperature  float64
		anomalyScore float64
		wantScore    float64
		wantStatus   string
		wantDays     float64
		wantUrgency  string
	}{
		{
			name:      "pristine machine",
			vibration: 10, temperature: 20, anomalyScore: 0.5,
			wantScore: 100, wantStatus: ml.HealthExcellent,
			wantDays: 24, wantUrgency: ml.UrgencyScheduled,
		},
		{
			name:      "every factor at its lowest band",
			vibration: 76, temperature: 66, anomalyScore: 0.05,
			wantScore: 80, wantStatus: ml.HealthExcellent,
			wantDays: 14, wantUrgency: ml.UrgencyScheduled,
		},
		{
			name:      "mid-band interpolation",
			vibration: 86, temperature: 60, anomalyScore: -0.05,
			wantScore: 65, wantStatus: ml.HealthGood,
			wantDays: 8.8, wantUrgency: ml.UrgencyScheduled,
		},
		{
			name:      "fair with moderate penalties",
			vibration: 96, temperature: 20, anomalyScore: -0.1,
			wantScore: 45, wantStatus: ml.HealthFair,
			wantDays: 4, wantUrgency: ml.UrgencyScheduled,
		},
		{
			name:      "poor machine due soon",
			vibration: 96, temperature: 71, anomalyScore: -0.1,
			wantScore: 30, wantStatus: ml.HealthPoor,
			wantDays: 2, wantUrgency: ml.UrgencySoon,
		},
		{
			name:      "critical needs immediate maintenance",
			vibration: 96, temperature: 81, anomalyScore: -0.3,
			wantScore: 15, wantStatus: ml.HealthCritical,
			wantDays: 0, wantUrgency: ml.UrgencyImmediate,
		},
		{
			name:      "penalties clamp at zero",
			vibration: 96, temperature: 81, anomalyScore: -0.6,
			wantScore: 0, wantStatus: ml.HealthCritical,
			wantDays: 0, wantUrgency: ml.UrgencyImmediate,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assessment := Classify(c.vibration, c.temperature, c.anomalyScore)
			assert.Equal(t, c.wantScore, assessment.Score)
			assert.Equal(t, c.wantStatus, assessment.Status)
			assert.Equal(t, c.wantDays, assessment.DaysUntilMaintenance)
			assert.Equal(t, c.wantUrgency, assessment.MaintenanceUrgency)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	first := Classify(87.3, 72.9, -0.42)
	second := Classify(87.3, 72.9, -0.42)
	assert.Equal(t, first, second)
}

func TestClassify_Monotonic(t *testing.T) {
	t.Run("rising vibration never improves the score", func(t *testing.T) {
		previous := 100.0
		for vibration := 0.0; vibration <= 120; vibration += 0.5 {
			score := Classify(vibration, 50, 0.5).Score
			assert.LessOrEqual(t, score, previous)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
			previous = score
		}
	})

	t.Run("rising temperature never improves the score", func(t *testing.T) {
		previous := 100.0
		for temperature := 0.0; temperature <= 100; temperature += 0.5 {
			score := Classify(10, temperature, 0.5).Score
			assert.LessOrEqual(t, score, previous)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
			previous = score
		}
	})
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name       string
		prediction ml.AnomalyPrediction
		want       string
	}{
		{
			name:       "ensemble vote wins regardless of score",
			prediction: ml.AnomalyPrediction{IsAnomaly: true, RawScore: 0.4, RiskLevel: ml.RiskNormal},
			want:       telemetry.StatusAnomaly,
		},
		{
			name:       "deep negative raw score",
			prediction: ml.AnomalyPrediction{RawScore: -0.6, RiskLevel: ml.RiskNormal},
			want:       telemetry.StatusAnomaly,
		},
		{
			name:       "low raw score warns",
			prediction: ml.AnomalyPrediction{RawScore: 0.05, RiskLevel: ml.RiskNormal},
			want:       telemetry.StatusWarning,
		},
		{
			name:       "medium risk warns even with a healthy score",
			prediction: ml.AnomalyPrediction{RawScore: 0.4, RiskLevel: ml.RiskMedium},
			want:       telemetry.StatusWarning,
		},
		{
			name:       "healthy",
			prediction: ml.AnomalyPrediction{RawScore: 0.4, RiskLevel: ml.RiskLow},
			want:       telemetry.StatusNormal,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DeriveStatus(c.prediction))
		})
	}
}
