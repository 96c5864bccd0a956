package alerts

import (
	"errors"

	"plantpulse/common/dto"
	"plantpulse/mocks/plantpulse/common/infrastructure/interfaces/utils"
)

var (
	u              *utils.PulseMockUtils
	testEventData  dto.AnomalyEvent
	testEventData1 dto.AnomalyEvent
	testError      = errors.New("dummy error")
)

func init() {
	u = utils.NewApplicationServiceMock(map[string]string{"OpenSearchURL": "", "SkipCertVerification": "true"})

	testEventData = dto.AnomalyEvent{
		Id:             "f1c5f0e8-6b64-48ad-91b7-c5981b5ca3b9",
		Class:          dto.EVENT_CLASS_ANOMALY,
		EventType:      "AnomalyDetected",
		EquipmentName:  "PUMP-7",
		Status:         dto.EVENT_STATUS_OPEN,
		Severity:       dto.SEVERITY_CRITICAL,
		Thresholds:     map[string]interface{}{"vibration": float64(75)},
		ActualValues:   map[string]interface{}{"vibration": float64(96)},
		AdditionalData: map[string]string{"modelVersion": "1.0.0"},
		CorrelationId:  "evt-123456",
		Tasks: []dto.TaskRef{
			{
				Id:       "42",
				Title:    "PUMP-7: High vibration: 96.0",
				Priority: "HIGH",
				Status:   "NOT_STARTED",
			},
		},
		IsNewEvent: true,
	}

	testEventData1 = dto.AnomalyEvent{
		Id:            "f1c5f0e8-6b64-48ad-91b7-c5981b5ca3b1",
		Status:        dto.EVENT_STATUS_CLOSED,
		IsNewEvent:    false,
		CorrelationId: "",
	}
}
