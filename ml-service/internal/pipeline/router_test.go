package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

func buildRouter() (*Router, *ScoringPipeline) {
	scoringPipeline, _ := buildScoringPipeline()
	return NewRouter(scoringPipeline.service, scoringPipeline), scoringPipeline
}

func performRequest(router *Router, handler func(echo.Context) error, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec
}

func TestRouter_GetLive(t *testing.T) {
	t.Run("GetLive - Passed (per machine)", func(t *testing.T) {
		router, scoringPipeline := buildRouter()
		scoringPipeline.live.Update(scoredReading("CNC-7", telemetry.StatusNormal, 10, 45, 0.4))

		rec := performRequest(router, router.GetLive, "/api/v3/ml_scoring/live?machineId=CNC-7")

		require.Equal(t, http.StatusOK, rec.Code)
		var reading telemetry.ScoredReading
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reading))
		assert.Equal(t, "CNC-7", reading.MachineID)
		assert.Equal(t, telemetry.StatusNormal, reading.Status)
	})

	t.Run("GetLive - Passed (newest across machines)", func(t *testing.T) {
		router, scoringPipeline := buildRouter()
		older := scoredReading("CNC-7", telemetry.StatusNormal, 10, 45, 0.4)
		newer := scoredReading("MILL-2", telemetry.StatusWarning, 60, 50, 0.05)
		newer.Timestamp = older.Timestamp + 5000
		scoringPipeline.live.Update(older)
		scoringPipeline.live.Update(newer)

		rec := performRequest(router, router.GetLive, "/api/v3/ml_scoring/live")

		require.Equal(t, http.StatusOK, rec.Code)
		var reading telemetry.ScoredReading
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reading))
		assert.Equal(t, "MILL-2", reading.MachineID)
	})

	t.Run("GetLive - Failed (no data yet)", func(t *testing.T) {
		router, _ := buildRouter()

		rec := performRequest(router, router.GetLive, "/api/v3/ml_scoring/live")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "No data available. Ensure the data ingestion pipeline is running.")
	})
}

func TestRouter_GetLiveMachines(t *testing.T) {
	router, scoringPipeline := buildRouter()
	scoringPipeline.live.Update(scoredReading("CNC-7", telemetry.StatusNormal, 10, 45, 0.4))
	scoringPipeline.live.Update(scoredReading("MILL-2", telemetry.StatusNormal, 11, 44, 0.5))

	rec := performRequest(router, router.GetLiveMachines, "/api/v3/ml_scoring/live/machines")

	require.Equal(t, http.StatusOK, rec.Code)
	var machines []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &machines))
	assert.ElementsMatch(t, []string{"CNC-7", "MILL-2"}, machines)
}

func TestRouter_GetHistory(t *testing.T) {
	t.Run("GetHistory - Passed", func(t *testing.T) {
		router, _ := buildRouter()
		mockedStore.On("History", mock.Anything, "CNC-7", time.Hour, 10).
			Return([]telemetry.ScoredReading{scoredReading("CNC-7", telemetry.StatusNormal, 10, 45, 0.4)}, nil)

		rec := performRequest(router, router.GetHistory, "/api/v3/ml_scoring/history?machineId=CNC-7&window=1h&limit=10")

		require.Equal(t, http.StatusOK, rec.Code)
		var readings []telemetry.ScoredReading
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &readings))
		require.Len(t, readings, 1)
		assert.Equal(t, "CNC-7", readings[0].MachineID)
	})

	t.Run("GetHistory - Failed (invalid window)", func(t *testing.T) {
		router, _ := buildRouter()

		rec := performRequest(router, router.GetHistory, "/api/v3/ml_scoring/history?window=tomorrow")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid window duration")
	})

	t.Run("GetHistory - Failed (invalid limit)", func(t *testing.T) {
		router, _ := buildRouter()

		rec := performRequest(router, router.GetHistory, "/api/v3/ml_scoring/history?limit=-5")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid limit")
	})

	t.Run("GetHistory - Failed (store error)", func(t *testing.T) {
		router, _ := buildRouter()
		mockedStore.On("History", mock.Anything, "", time.Duration(0), 0).
			Return(nil, errors.New("clickhouse down"))

		rec := performRequest(router, router.GetHistory, "/api/v3/ml_scoring/history")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Error reading the scored history")
	})
}

func TestRouter_GetStats(t *testing.T) {
	t.Run("GetStats - Passed", func(t *testing.T) {
		router, _ := buildRouter()
		mockedStore.On("Stats", mock.Anything, "CNC-7", time.Duration(0)).
			Return(telemetry.MachineStats{MachineID: "CNC-7", ReadingCount: 42, AnomalyRate: 0.05}, nil)

		rec := performRequest(router, router.GetStats, "/api/v3/ml_scoring/stats?machineId=CNC-7")

		require.Equal(t, http.StatusOK, rec.Code)
		var stats telemetry.MachineStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, int64(42), stats.ReadingCount)
	})

	t.Run("GetStats - Failed (store error)", func(t *testing.T) {
		router, _ := buildRouter()
		mockedStore.On("Stats", mock.Anything, "", time.Duration(0)).
			Return(telemetry.MachineStats{}, errors.New("clickhouse down"))

		rec := performRequest(router, router.GetStats, "/api/v3/ml_scoring/stats")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRouter_GetAlerts(t *testing.T) {
	t.Run("GetAlerts - Passed", func(t *testing.T) {
		router, _ := buildRouter()
		mockedStore.On("Alerts", mock.Anything, "", 5).
			Return([]telemetry.Alert{{MachineID: "CNC-7", Metric: "vibration", Value: 82.0, Threshold: 75.0, Severity: "WARNING"}}, nil)

		rec := performRequest(router, router.GetAlerts, "/api/v3/ml_scoring/alerts?limit=5")

		require.Equal(t, http.StatusOK, rec.Code)
		var alerts []telemetry.Alert
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
		require.Len(t, alerts, 1)
		assert.Equal(t, "vibration", alerts[0].Metric)
	})

	t.Run("GetAlerts - Failed (invalid limit)", func(t *testing.T) {
		router, _ := buildRouter()

		rec := performRequest(router, router.GetAlerts, "/api/v3/ml_scoring/alerts?limit=ten")

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_Healthz(t *testing.T) {
	t.Run("Healthz - Passed", func(t *testing.T) {
		router, _ := buildRouter()
		mockedStore.On("Ping", mock.Anything).Return(nil)

		rec := performRequest(router, router.Healthz, "/api/v3/ml_scoring/healthz")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	})

	t.Run("Healthz - Failed (store unreachable)", func(t *testing.T) {
		router, _ := buildRouter()
		mockedStore.On("Ping", mock.Anything).Return(errors.New("connection refused"))

		rec := performRequest(router, router.Healthz, "/api/v3/ml_scoring/healthz")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "telemetry store unreachable")
	})

	t.Run("Healthz - Failed (no store configured)", func(t *testing.T) {
		router, scoringPipeline := buildRouter()
		scoringPipeline.store = nil

		rec := performRequest(router, router.Healthz, "/api/v3/ml_scoring/healthz")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_Reinitialize(t *testing.T) {
	router, scoringPipeline := buildRouter()
	mockedRegistry.On("GetActive", ml.ModelTypeAnomalyDetection).Return(nil, nil)

	// warm the model cache, then force a reload through the endpoint
	_, _ = scoringPipeline.models.Serving(ml.ModelTypeAnomalyDetection)
	_, _ = scoringPipeline.models.Serving(ml.ModelTypeAnomalyDetection)
	assert.Equal(t, 1, registryCallCount("GetActive"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v3/ml_scoring/reinitialize", nil)
	rec := httptest.NewRecorder()
	_ = router.Reinitialize(e.NewContext(req, rec))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "Success")

	_, _ = scoringPipeline.models.Serving(ml.ModelTypeAnomalyDetection)
	assert.Equal(t, 2, registryCallCount("GetActive"))
}

func registryCallCount(method string) int {
	count := 0
	for _, call := range mockedRegistry.Calls {
		if call.Method == method {
			count++
		}
	}
	return count
}
