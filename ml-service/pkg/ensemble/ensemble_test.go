package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantpulse/ml-service/pkg/dto/ml"
)

// clusteredTrainingData builds a telemetry matrix dominated by one repeated
// operating point plus a handful of in-range excursions, so detector votes
// have wide, reproducible margins.
func clusteredTrainingData() ([][]float64, []string) {
	featureNames := []string{"vibration", "temperature", "humidity"}
	rows := make([][]float64, 0, 300)
	for i := 0; i < 291; i++ {
		rows = append(rows, []float64{50, 50, 50})
	}
	spread := [][]float64{
		{41.0, 55.5, 47.0},
		{58.2, 44.1, 52.3},
		{46.7, 59.0, 41.8},
		{53.4, 42.6, 58.9},
		{44.9, 51.7, 55.1},
		{57.1, 47.3, 43.2},
		{42.8, 56.4, 50.6},
		{55.8, 41.2, 46.4},
		{49.3, 58.7, 57.7},
	}
	rows = append(rows, spread...)
	return rows, featureNames
}

func TestStandardScaler_FitTransform(t *testing.T) {
	t.Run("Fit - Passed (constant feature scales by 1)", func(t *testing.T) {
		scaler := &StandardScaler{}
		require.NoError(t, scaler.Fit([][]float64{{1, 10}, {3, 10}, {5, 10}}))
		assert.InDelta(t, 3.0, scaler.Mean[0], 0.0001)
		assert.InDelta(t, 2.0, scaler.Std[0], 0.0001)
		assert.Equal(t, 1.0, scaler.Std[1])

		scaled, err := scaler.Transform([]float64{5, 10})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, scaled[0], 0.0001)
		assert.Equal(t, 0.0, scaled[1])
	})

	t.Run("Fit - Failed (no rows)", func(t *testing.T) {
		scaler := &StandardScaler{}
		assert.Error(t, scaler.Fit(nil))
	})

	t.Run("Transform - Failed (width mismatch)", func(t *testing.T) {
		scaler := &StandardScaler{}
		require.NoError(t, scaler.Fit([][]float64{{1, 2}, {3, 4}}))
		_, err := scaler.Transform([]float64{1})
		assert.Error(t, err)
	})
}

func TestRobustScaler_FitTransform(t *testing.T) {
	t.Run("Fit - Passed (extreme reading does not shift the center)", func(t *testing.T) {
		scaler := &RobustScaler{}
		require.NoError(t, scaler.Fit([][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}, {1000}}))
		assert.Equal(t, 5.0, scaler.Center[0])
		assert.Equal(t, 5.0, scaler.Scale[0])

		scaled, err := scaler.Transform([]float64{1000})
		require.NoError(t, err)
		assert.InDelta(t, 199.0, scaled[0], 0.0001)
	})

	t.Run("Fit - Passed (zero interquartile range scales by 1)", func(t *testing.T) {
		scaler := &RobustScaler{}
		require.NoError(t, scaler.Fit([][]float64{{7}, {7}, {7}, {7}}))
		assert.Equal(t, 1.0, scaler.Scale[0])
	})

	t.Run("Fit - Failed (ragged rows)", func(t *testing.T) {
		scaler := &RobustScaler{}
		assert.Error(t, scaler.Fit([][]float64{{1, 2}, {3}}))
	})
}

func TestIsolationForest_Predict(t *testing.T) {
	rows, _ := clusteredTrainingData()
	forest := NewIsolationForest()
	require.NoError(t, forest.Fit(rows))
	require.True(t, forest.IsFitted())

	t.Run("Predict - Passed (far point isolates quickly)", func(t *testing.T) {
		vote, pct, err := forest.Predict([]float64{95, 95, 95})
		require.NoError(t, err)
		assert.True(t, vote)
		assert.Greater(t, pct, 50.0)
	})

	t.Run("Predict - Passed (point on the training mass stays normal)", func(t *testing.T) {
		vote, pct, err := forest.Predict([]float64{50, 50, 50})
		require.NoError(t, err)
		assert.False(t, vote)
		assert.LessOrEqual(t, pct, 50.0)
	})

	t.Run("Predict - Failed (not fitted)", func(t *testing.T) {
		_, _, err := NewIsolationForest().Predict([]float64{50, 50, 50})
		assert.Error(t, err)
	})
}

func TestLocalOutlierFactor_Predict(t *testing.T) {
	rows, _ := clusteredTrainingData()
	lof := NewLocalOutlierFactor()
	require.NoError(t, lof.Fit(rows))

	t.Run("Predict - Passed (sparse-region point is an outlier)", func(t *testing.T) {
		vote, pct, err := lof.Predict([]float64{95, 95, 95})
		require.NoError(t, err)
		assert.True(t, vote)
		assert.Equal(t, 100.0, pct)
	})

	t.Run("Predict - Passed (duplicate of the training mass scores 0)", func(t *testing.T) {
		vote, pct, err := lof.Predict([]float64{50, 50, 50})
		require.NoError(t, err)
		assert.False(t, vote)
		assert.Equal(t, 0.0, pct)
	})

	t.Run("Fit - Failed (single training row)", func(t *testing.T) {
		err := NewLocalOutlierFactor().Fit([][]float64{{1, 2, 3}})
		assert.Error(t, err)
	})
}

func TestOneClassBoundary_Predict(t *testing.T) {
	rows, _ := clusteredTrainingData()
	boundary := NewOneClassBoundary()
	require.NoError(t, boundary.Fit(rows))
	require.Greater(t, boundary.Radius, 0.0)
	require.Greater(t, boundary.Gamma, 0.0)

	t.Run("Predict - Passed (point outside the boundary)", func(t *testing.T) {
		vote, pct, err := boundary.Predict([]float64{95, 95, 95})
		require.NoError(t, err)
		assert.True(t, vote)
		assert.Greater(t, pct, 25.0)
	})

	t.Run("Predict - Passed (point inside the boundary)", func(t *testing.T) {
		vote, _, err := boundary.Predict([]float64{50, 50, 50})
		require.NoError(t, err)
		assert.False(t, vote)
	})

	t.Run("Fit - Failed (nu out of range)", func(t *testing.T) {
		bad := NewOneClassBoundary()
		bad.Nu = 1.5
		assert.Error(t, bad.Fit(rows))
	})
}

func TestEnsembleDetector_Fit(t *testing.T) {
	t.Run("Fit - Passed (all detectors trained)", func(t *testing.T) {
		rows, featureNames := clusteredTrainingData()
		detector := NewEnsembleDetector()
		require.NoError(t, detector.Fit(rows, featureNames))
		assert.True(t, detector.Fitted)
		assert.Equal(t, []string{AlgorithmIsolationForest, AlgorithmLocalOutlierFactor, AlgorithmOneClassBoundary},
			detector.FittedDetectors())
		assert.Empty(t, detector.FitWarnings)
		assert.Len(t, detector.Importances, 3)
	})

	t.Run("Fit - Passed (detector that cannot fit is skipped with a warning)", func(t *testing.T) {
		detector := NewEnsembleDetector()
		require.NoError(t, detector.Fit([][]float64{{50, 50, 50}}, []string{"vibration", "temperature", "humidity"}))
		assert.Equal(t, []string{AlgorithmIsolationForest, AlgorithmOneClassBoundary}, detector.FittedDetectors())
		require.Len(t, detector.FitWarnings, 1)
		assert.Contains(t, detector.FitWarnings[0], AlgorithmLocalOutlierFactor)
	})

	t.Run("Fit - Passed (feature names generated when omitted)", func(t *testing.T) {
		rows, _ := clusteredTrainingData()
		detector := NewEnsembleDetector()
		require.NoError(t, detector.Fit(rows, nil))
		assert.Equal(t, []string{"feature_0", "feature_1", "feature_2"}, detector.FeatureNames)
	})

	t.Run("Fit - Failed (no training rows)", func(t *testing.T) {
		assert.Error(t, NewEnsembleDetector().Fit(nil, nil))
	})

	t.Run("Fit - Failed (no detectors configured)", func(t *testing.T) {
		detector := &EnsembleDetector{}
		assert.Error(t, detector.Fit([][]float64{{1}}, nil))
	})
}

func TestEnsembleDetector_Predict(t *testing.T) {
	rows, featureNames := clusteredTrainingData()
	detector := NewEnsembleDetector()
	require.NoError(t, detector.Fit(rows, featureNames))

	t.Run("Predict - Passed (unanimous anomaly vote)", func(t *testing.T) {
		prediction, err := detector.Predict([]float64{95, 95, 95})
		require.NoError(t, err)
		assert.True(t, prediction.IsAnomaly)
		assert.Equal(t, 95.0, prediction.Confidence)
		assert.Len(t, prediction.AlgorithmVotes, 3)
		for name, vote := range prediction.AlgorithmVotes {
			assert.True(t, vote, "expected %s to vote anomaly", name)
		}
		assert.Greater(t, prediction.AnomalyScore, 50.0)
		assert.Less(t, prediction.RawScore, 0.0)
		assert.True(t, ml.RiskAtLeast(prediction.RiskLevel, ml.RiskHigh))
		assert.Equal(t, []string{FactorGeneralDeviation}, prediction.ContributingFactors)
	})

	t.Run("Predict - Passed (unanimous normal vote)", func(t *testing.T) {
		prediction, err := detector.Predict([]float64{50, 50, 50})
		require.NoError(t, err)
		assert.False(t, prediction.IsAnomaly)
		assert.Equal(t, 95.0, prediction.Confidence)
		assert.Less(t, prediction.AnomalyScore, 50.0)
		assert.Greater(t, prediction.RawScore, 0.0)
	})

	t.Run("Predict - Passed (partial ensemble keeps scoring)", func(t *testing.T) {
		partial := NewEnsembleDetector()
		require.NoError(t, partial.Fit([][]float64{{50, 50, 50}}, featureNames))
		prediction, err := partial.Predict([]float64{50, 50, 50})
		require.NoError(t, err)
		assert.Len(t, prediction.AlgorithmVotes, 2)
		assert.False(t, prediction.IsAnomaly)
		assert.Equal(t, ml.RiskNormal, prediction.RiskLevel)
	})

	t.Run("Predict - Failed (not fitted)", func(t *testing.T) {
		_, err := NewEnsembleDetector().Predict([]float64{50, 50, 50})
		assert.Error(t, err)
	})

	t.Run("Predict - Failed (feature width mismatch)", func(t *testing.T) {
		_, err := detector.Predict([]float64{50, 50})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expects")
	})
}

func TestEnsembleDetector_ContributingFactors(t *testing.T) {
	detector := &EnsembleDetector{
		FeatureNames: []string{"vibration", "temperature", "humidity", "equipment_age"},
	}

	t.Run("ContributingFactors - Passed (red-line features reported)", func(t *testing.T) {
		detector.Importances = []float64{0.4, 0.3, 0.2, 0.1}
		factors := detector.contributingFactors([]float64{92.0, 75.5, 95.0, 20.0})
		assert.Equal(t, []string{
			"High vibration: 92.0",
			"High temperature: 75.5°C",
			"High humidity: 95.0%",
		}, factors)
	})

	t.Run("ContributingFactors - Passed (aging reported when important)", func(t *testing.T) {
		detector.Importances = []float64{0.1, 0.1, 0.1, 0.7}
		factors := detector.contributingFactors([]float64{50, 50, 50, 22.0})
		assert.Equal(t, []string{"Equipment aging: 22 months"}, factors)
	})

	t.Run("ContributingFactors - Passed (generic fallback when nothing crosses)", func(t *testing.T) {
		detector.Importances = []float64{0.5, 0.3, 0.1, 0.1}
		factors := detector.contributingFactors([]float64{50, 50, 50, 5})
		assert.Equal(t, []string{FactorGeneralDeviation}, factors)
	})

	t.Run("ContributingFactors - Passed (no importances, no factors)", func(t *testing.T) {
		detector.Importances = nil
		assert.Nil(t, detector.contributingFactors([]float64{95, 95, 95, 20}))
	})
}

func TestEnsembleDetector_Hyperparameters(t *testing.T) {
	detector := NewEnsembleDetector()
	params := detector.Hyperparameters()

	assert.Equal(t, DefaultVotingThreshold, params["votingThreshold"])
	assert.Equal(t, DefaultContamination, params["contamination"])
	assert.Equal(t, DefaultTreeCount, params["treeCount"])
	assert.Equal(t, DefaultSubsampleSize, params["subsampleSize"])
	assert.Equal(t, DefaultNeighbors, params["neighbors"])
	assert.Equal(t, DefaultContamination, params["nu"])
}
