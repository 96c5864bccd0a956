package pipeline

import (
	"errors"
	"testing"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/dtos"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plantpulse/common/client"
	"plantpulse/mocks/plantpulse/common/infrastructure/interfaces/utils"
	svcmocks "plantpulse/mocks/plantpulse/common/service"
	alertsmocks "plantpulse/mocks/plantpulse/ml-service/pkg/alerts"
	registrymocks "plantpulse/mocks/plantpulse/ml-service/pkg/registry"
	tasksmocks "plantpulse/mocks/plantpulse/ml-service/pkg/tasks"
	tsdbmocks "plantpulse/mocks/plantpulse/ml-service/pkg/tsdb"
	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/dto/telemetry"
	"plantpulse/ml-service/pkg/ensemble"
	"plantpulse/ml-service/pkg/features"
	"plantpulse/ml-service/pkg/registry"
)

var (
	mockedStore      *tsdbmocks.MockReadingStore
	mockedRegistry   *registrymocks.MockRegistryInterface
	mockedCreator    *tasksmocks.MockTaskCreator
	mockedExporter   *alertsmocks.MockOpenSearchExporter
	mockedMqttSender *svcmocks.MockMqttSender
)

// buildScoringPipeline wires a pipeline around fresh mocks so every test
// starts from a clean per-machine event ledger
func buildScoringPipeline() (*ScoringPipeline, interfaces.AppFunctionContext) {
	u := utils.NewApplicationServiceMock(nil)
	lc := u.AppService.LoggingClient()

	mockedStore = &tsdbmocks.MockReadingStore{}
	mockedRegistry = &registrymocks.MockRegistryInterface{}
	mockedCreator = &tasksmocks.MockTaskCreator{}
	mockedExporter = &alertsmocks.MockOpenSearchExporter{}
	mockedMqttSender = &svcmocks.MockMqttSender{}

	mockedStore.On("CalibrationSamples", mock.Anything, mock.Anything).
		Return(nil, errors.New("calibration store offline"))

	scoringPipeline := &ScoringPipeline{
		service:            u.AppService,
		appConfig:          &ScoringConfig{PublishEventTopic: "pp/events"},
		lc:                 lc,
		models:             registry.NewModelCache(mockedRegistry, lc, registry.DefaultModelCacheTTL, false),
		calibration:        features.NewCalibrationCache(mockedStore, lc, 0, 0),
		taskCreator:        mockedCreator,
		store:              mockedStore,
		exporter:           mockedExporter,
		mqttSender:         mockedMqttSender,
		live:               NewLiveCache(0),
		telemetry:          NewTelemetry(client.PulseMLScoringServiceName, nil, "unit-test-host"),
		eventStatByMachine: make(map[string]EventStats),
		sourceNode:         "unit-test-node",
	}
	return scoringPipeline, u.AppFunctionContext
}

// fittedServingModel trains a real ensemble on a tight operating cluster so
// model-path tests exercise genuine detector votes
func fittedServingModel(t *testing.T) *registry.LoadedModel {
	rows := make([][]float64, 0, 300)
	for i := 0; i < 294; i++ {
		rows = append(rows, []float64{50, 50, 50})
	}
	rows = append(rows,
		[]float64{43.5, 54.2, 48.8},
		[]float64{57.6, 45.9, 51.4},
		[]float64{46.1, 57.3, 44.7},
		[]float64{54.8, 43.2, 56.5},
		[]float64{48.9, 52.6, 42.3},
		[]float64{52.2, 48.4, 58.1},
	)

	detector := ensemble.NewEnsembleDetector()
	require.NoError(t, detector.Fit(rows, features.DefaultSchema))
	return &registry.LoadedModel{
		Version: ml.ModelVersion{
			Version:   "1.2.0",
			ModelType: ml.ModelTypeAnomalyDetection,
			Status:    ml.ModelStatusActive,
			Features:  features.DefaultSchema,
		},
		Ensemble: detector,
	}
}

func scoredReading(machineID string, status string, vibration, temperature, rawScore float64) telemetry.ScoredReading {
	return telemetry.ScoredReading{
		SensorReading: telemetry.SensorReading{
			MachineID:   machineID,
			Timestamp:   1735000000000,
			Vibration:   vibration,
			Temperature: temperature,
		},
		RawScore: rawScore,
		Status:   status,
	}
}

func buildTelemetryEvent(deviceName string, resources map[string]string) dtos.Event {
	event := dtos.Event{
		Id:          "edgex-ev-id-01",
		DeviceName:  deviceName,
		ProfileName: "FactoryPLC",
		SourceName:  "plc-gateway",
		Origin:      1735000000000000000,
		Readings:    nil,
	}
	for name, value := range resources {
		reading := dtos.BaseReading{
			ValueType:     "Float64",
			SimpleReading: dtos.SimpleReading{Value: value},
		}
		reading.ResourceName = name
		reading.DeviceName = event.DeviceName
		reading.ProfileName = event.ProfileName
		reading.Origin = event.Origin
		event.Readings = append(event.Readings, reading)
	}
	return event
}
