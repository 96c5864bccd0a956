package alerts

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBareClient() *PulseOpenSearchClient {
	// No network calls here, so no opensearch.Client needed
	return &PulseOpenSearchClient{logger: u.AppService.LoggingClient()}
}

func TestPulseOpenSearchClient_ConvertToAnomalyEvents(t *testing.T) {
	t.Run("ConvertToAnomalyEvents - Passed (full document)", func(t *testing.T) {
		searchResult := map[string]interface{}{
			"hits": map[string]interface{}{
				"hits": []interface{}{
					map[string]interface{}{
						"_id": "evt-1",
						"_source": map[string]interface{}{
							"class":           "ANOMALY",
							"event_type":      "AnomalyDetected",
							"equipment_name":  "PUMP-7",
							"severity":        "CRITICAL",
							"risk_level":      "HIGH",
							"status":          "Open",
							"correlation_id":  "corr-1",
							"created":         float64(1700000000000),
							"related_metrics": []interface{}{"vibration", "temperature"},
							"thresholds":      map[string]interface{}{"vibration": float64(75)},
							"actual_values":   map[string]interface{}{"vibration": float64(96)},
							"additional_data": map[string]interface{}{"modelVersion": "1.0.0", "score": float64(12)},
							"tasks": []interface{}{
								map[string]interface{}{
									"id":       "42",
									"title":    "PUMP-7: High vibration: 96.0",
									"priority": "HIGH",
									"status":   "NOT_STARTED",
								},
							},
						},
					},
				},
			},
		}

		events, err := newBareClient().ConvertToAnomalyEvents(searchResult)

		assert.NoError(t, err)
		assert.Len(t, events, 1)
		event := events[0]
		assert.Equal(t, "evt-1", event.Id)
		assert.Equal(t, "ANOMALY", event.Class)
		assert.Equal(t, "PUMP-7", event.EquipmentName)
		assert.Equal(t, "HIGH", event.RiskLevel)
		assert.Equal(t, "Open", event.Status)
		assert.Equal(t, "corr-1", event.CorrelationId)
		assert.Equal(t, int64(1700000000000), event.Created)
		assert.Equal(t, []string{"vibration", "temperature"}, event.RelatedMetrics)
		assert.Equal(t, float64(75), event.Thresholds["vibration"])
		assert.Equal(t, float64(96), event.ActualValues["vibration"])
		// Non-string additional data values are dropped
		assert.Equal(t, map[string]string{"modelVersion": "1.0.0"}, event.AdditionalData)
		assert.Len(t, event.Tasks, 1)
		assert.Equal(t, "42", event.Tasks[0].Id)
		assert.Equal(t, "PUMP-7: High vibration: 96.0", event.Tasks[0].Title)
	})

	t.Run("ConvertToAnomalyEvents - Passed (no hits)", func(t *testing.T) {
		events, err := newBareClient().ConvertToAnomalyEvents(map[string]interface{}{})

		assert.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("ConvertToAnomalyEvents - Passed (hit without source keeps the id)", func(t *testing.T) {
		searchResult := map[string]interface{}{
			"hits": map[string]interface{}{
				"hits": []interface{}{
					map[string]interface{}{"_id": "evt-2"},
				},
			},
		}

		events, err := newBareClient().ConvertToAnomalyEvents(searchResult)

		assert.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, "evt-2", events[0].Id)
	})
}

func TestPulseOpenSearchClient_BuildSearchRequest(t *testing.T) {
	req := newBareClient().BuildSearchRequest("correlation_id:\"corr-1\" AND status:Open", AnomalyEventIndexName)

	assert.Equal(t, []string{AnomalyEventIndexName}, req.Indices)

	body, err := io.ReadAll(req.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "query_string")
	assert.Contains(t, string(body), "correlation_id")
}
