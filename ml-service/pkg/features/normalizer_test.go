package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantpulse/ml-service/pkg/dto/telemetry"
)

func floatPtr(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	t.Run("Normalize - Passed (full reading, default schema)", func(t *testing.T) {
		reading := telemetry.SensorReading{
			MachineID:   "Press_001",
			Vibration:   42.5,
			Temperature: 66.2,
			Humidity:    floatPtr(55.1),
		}
		fv, err := Normalize(reading, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultSchema, fv.Schema)
		assert.Equal(t, []float64{42.5, 66.2, 55.1}, fv.Values)
		assert.Empty(t, fv.Imputed)
	})

	t.Run("Normalize - Passed (absent humidity imputed as zero)", func(t *testing.T) {
		reading := telemetry.SensorReading{MachineID: "Press_001", Vibration: 42.5, Temperature: 66.2}
		fv, err := Normalize(reading, DefaultSchema)
		require.NoError(t, err)
		assert.Equal(t, []float64{42.5, 66.2, 0}, fv.Values)
		assert.True(t, fv.WasImputed("humidity"))
		assert.False(t, fv.WasImputed("vibration"))
	})

	t.Run("Normalize - Passed (non-finite value imputed)", func(t *testing.T) {
		reading := telemetry.SensorReading{
			MachineID:   "Press_001",
			Vibration:   math.NaN(),
			Temperature: math.Inf(1),
			Humidity:    floatPtr(55.1),
		}
		fv, err := Normalize(reading, DefaultSchema)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 55.1}, fv.Values)
		assert.True(t, fv.WasImputed("vibration"))
		assert.True(t, fv.WasImputed("temperature"))
	})

	t.Run("Normalize - Passed (schema names are case-insensitive)", func(t *testing.T) {
		reading := telemetry.SensorReading{MachineID: "Press_001", Vibration: 10, Temperature: 20}
		fv, err := Normalize(reading, []string{"Temperature", "Vibration"})
		require.NoError(t, err)
		assert.Equal(t, []float64{20, 10}, fv.Values)
	})

	t.Run("Normalize - Failed (feature telemetry cannot provide)", func(t *testing.T) {
		reading := telemetry.SensorReading{MachineID: "Press_001", Vibration: 10, Temperature: 20}
		_, err := Normalize(reading, []string{"vibration", "Age"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Age")
	})
}

func TestEstimateScore(t *testing.T) {
	t.Run("EstimateScore - Passed (idle machine scores high)", func(t *testing.T) {
		assert.InDelta(t, 1.0, EstimateScore(0, 0, DefaultCalibration()), 0.000001)
	})

	t.Run("EstimateScore - Passed (full stress scores -1)", func(t *testing.T) {
		assert.InDelta(t, -1.0, EstimateScore(100, 100, DefaultCalibration()), 0.000001)
		// Beyond the maxima the ratios clamp, the score stays bounded
		assert.InDelta(t, -1.0, EstimateScore(250, 300, DefaultCalibration()), 0.000001)
	})

	t.Run("EstimateScore - Passed (vibration weighted 0.6, temperature 0.4)", func(t *testing.T) {
		// stress = 0.6*0.5 + 0.4*0.25 = 0.4 -> score 0.2
		assert.InDelta(t, 0.2, EstimateScore(50, 25, DefaultCalibration()), 0.000001)
	})

	t.Run("EstimateScore - Passed (calibrated maxima)", func(t *testing.T) {
		calibration := Calibration{VibrationMax: 80, TemperatureMax: 60, Calibrated: true}
		// stress = 0.6*(40/80) + 0.4*(30/60) = 0.5 -> score 0
		assert.InDelta(t, 0.0, EstimateScore(40, 30, calibration), 0.000001)
	})

	t.Run("EstimateScore - Passed (zero calibration falls back to defaults)", func(t *testing.T) {
		assert.InDelta(t, 0.0, EstimateScore(50, 50, Calibration{}), 0.000001)
	})

	t.Run("EstimateScore - Passed (negative and NaN inputs add no stress)", func(t *testing.T) {
		assert.InDelta(t, 1.0, EstimateScore(-5, math.NaN(), DefaultCalibration()), 0.000001)
	})
}

func TestNormalizeScore(t *testing.T) {
	cases := []struct {
		name string
		raw  float64
		want float64
	}{
		{"lower bound", -1, 0},
		{"upper bound", 1, 1},
		{"midpoint", 0, 0.5},
		{"inside", 0.5, 0.75},
		{"clamped below", -3, 0},
		{"clamped above", 2.5, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, NormalizeScore(c.raw), 0.000001)
		})
	}

	t.Run("NaN maps to 0", func(t *testing.T) {
		assert.Equal(t, 0.0, NormalizeScore(math.NaN()))
	})
}
