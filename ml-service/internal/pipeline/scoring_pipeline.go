/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/util"
	bootstrapinterfaces "github.com/edgexfoundry/go-mod-bootstrap/v3/bootstrap/interfaces"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/dtos"

	"plantpulse/common/client"
	mqttConfig "plantpulse/common/config"
	"plantpulse/common/db"
	"plantpulse/common/dto"
	commService "plantpulse/common/service"
	"plantpulse/common/utils"
	"plantpulse/ml-service/pkg/alerts"
	"plantpulse/ml-service/pkg/db/redis"
	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/dto/task"
	"plantpulse/ml-service/pkg/dto/telemetry"
	"plantpulse/ml-service/pkg/features"
	"plantpulse/ml-service/pkg/registry"
	"plantpulse/ml-service/pkg/tasks"
	"plantpulse/ml-service/pkg/tsdb"
)

const EVENT_PUB_ERR_MSG = "failed to publish the anomaly event to the message bus"

// Confidence reported when the heuristic estimator scored the reading, well
// below anything the ensemble reports for a fitted model
const fallbackConfidence = 30.0

var mqttSender commService.MqttSender

// ScoringPipeline scores telemetry messages end to end: decode, model (or
// heuristic) scoring, health classification, task auto-creation, persistence
// and the export fan-out. One message is scored to completion per pass; the
// only shared mutable state is the per-machine event ledger behind the mutex.
type ScoringPipeline struct {
	service   interfaces.ApplicationService
	appConfig *ScoringConfig
	lc        logger.LoggingClient

	models      *registry.ModelCache
	calibration *features.CalibrationCache
	taskCreator tasks.TaskCreatorInterface
	store       tsdb.ReadingStoreInterface
	exporter    alerts.OpenSearchExporterInterface
	mqttSender  commService.MqttSender
	remoteWrite *RemoteWriteExporter
	live        *LiveCache
	telemetry   *Telemetry

	mutex              sync.Mutex
	eventStatByMachine map[string]EventStats
	sourceNode         string
}

// EventStats is the event state remembered per machine, used to decide when a
// reading opens, updates or closes an anomaly event
type EventStats struct {
	Open           bool
	LastSeverity   string
	RelatedMetrics []string
	EventMessage   string
	Thresholds     map[string]interface{}
	ActualValues   map[string]interface{}
}

// ScoredResult pairs the scored reading with the maintenance task that was
// auto-created for it, if any
type ScoredResult struct {
	Reading telemetry.ScoredReading
	Task    *task.MaintenanceTask
}

// PublishEnvelope carries the scored result through the export stages. Event
// is nil when the reading did not change the machine's event state.
type PublishEnvelope struct {
	Result ScoredResult
	Event  *dto.AnomalyEvent
}

func NewScoringPipeline(
	service interfaces.ApplicationService,
	appConfig *ScoringConfig,
	metricsManager bootstrapinterfaces.MetricsManager,
) *ScoringPipeline {

	lc := service.LoggingClient()

	pipeline := new(ScoringPipeline)
	pipeline.service = service
	pipeline.appConfig = appConfig
	pipeline.lc = lc
	pipeline.eventStatByMachine = make(map[string]EventStats)

	dbConfig := db.NewDatabaseConfig()
	dbConfig.LoadAppConfigurations(service)
	mlDbClient := redis.NewDBClient(dbConfig)

	artifacts := registry.NewArtifactStore(appConfig.LocalModelBaseDir, lc)
	modelRegistry := registry.NewModelRegistry(mlDbClient, artifacts, lc)
	pipeline.models = registry.NewModelCache(
		modelRegistry, lc, registry.DefaultModelCacheTTL, appConfig.ABTestEnabled)

	store, err := tsdb.NewReadingStore(service)
	if err != nil {
		lc.Errorf("Error creating the telemetry store: %v", err)
		return nil
	}
	pipeline.store = store
	pipeline.calibration = features.NewCalibrationCache(
		store, lc, features.DefaultCalibrationWindow, features.DefaultCalibrationTTL)

	taskStore := tasks.NewTaskStore(service)
	lockClient := client.NewDBClient(dbConfig)
	taskCreator, err := tasks.NewAutoCreator(taskStore, lockClient, lc, appConfig.TaskDedupWindow)
	if err != nil {
		lc.Errorf("Error creating the task auto-creator: %v", err)
		return nil
	}
	pipeline.taskCreator = taskCreator

	pipeline.exporter = alerts.NewOpenSearchExporter(service)
	pipeline.live = NewLiveCache(DefaultLiveTTL)

	nodeId, hostName := mqttConfig.GetCurrentNodeIdAndHost(service)
	pipeline.sourceNode = nodeId
	pipeline.telemetry = NewTelemetry(client.PulseMLScoringServiceName, metricsManager, hostName)

	if appConfig.RemoteWriteURL != "" {
		pipeline.remoteWrite = NewRemoteWriteExporter(appConfig.RemoteWriteURL, lc)
	}

	if mqttSender == nil {
		config, err := mqttConfig.BuildMQTTSecretConfig(
			service, appConfig.PublishEventTopic, client.PulseMLScoringServiceKey)
		if err != nil {
			lc.Errorf("Error Building MQTT client: Error: %v", err)
		} else {
			pipeline.mqttSender = commService.NewMQTTSecretSender(config, mqttConfig.GetPersistOnError(service))
		}
	} else {
		pipeline.mqttSender = mqttSender //for testing purpose only
	}

	return pipeline
}

// plcPayload is the JSON shape the factory gateway publishes on the telemetry
// topic
type plcPayload struct {
	MachineID   string   `json:"machine_id"`
	Vibration   float64  `json:"vibration"`
	Temperature float64  `json:"temperature"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Timestamp   int64    `json:"timestamp,omitempty"`
}

// ConvertToReading decodes the inbound message into a SensorReading. Both the
// EdgeX event envelope and the raw PLC JSON payload are accepted.
func (p *ScoringPipeline) ConvertToReading(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	if data == nil {
		return false, errors.New("no Event Received")
	}
	p.telemetry.readingMessages.Inc(1)

	switch payload := data.(type) {
	case telemetry.SensorReading:
		return true, p.withDefaults(payload)
	case dtos.Event:
		reading, ok := p.fromEdgexEvent(ctx, payload)
		if !ok {
			return false, nil
		}
		return true, p.withDefaults(reading)
	default:
		raw, err := util.CoerceType(data)
		if err != nil {
			return false, fmt.Errorf("error while marshalling data: %s", err.Error())
		}
		var plc plcPayload
		if err = json.Unmarshal(raw, &plc); err != nil {
			return false, fmt.Errorf("error while unmarshalling data: %s", err.Error())
		}
		return true, p.withDefaults(telemetry.SensorReading{
			MachineID:   plc.MachineID,
			Timestamp:   plc.Timestamp,
			Vibration:   plc.Vibration,
			Temperature: plc.Temperature,
			Humidity:    plc.Humidity,
		})
	}
}

// withDefaults fills the fields optional on the wire: a missing machine id
// maps to UNKNOWN, a missing timestamp to the receive time
func (p *ScoringPipeline) withDefaults(reading telemetry.SensorReading) telemetry.SensorReading {
	if reading.MachineID == "" {
		reading.MachineID = "UNKNOWN"
	}
	if reading.Timestamp == 0 {
		reading.Timestamp = time.Now().UnixMilli()
	}
	return reading
}

func (p *ScoringPipeline) fromEdgexEvent(ctx interfaces.AppFunctionContext, event dtos.Event) (telemetry.SensorReading, bool) {
	reading := telemetry.SensorReading{MachineID: event.DeviceName}
	matched := false
	for _, baseReading := range event.Readings {
		value, err := utils.ParseSimpleValueToFloat64(baseReading.ValueType, baseReading.Value)
		if err != nil {
			ctx.LoggingClient().Warnf("skipping resource %s: %v", baseReading.ResourceName, err)
			continue
		}
		if reading.Timestamp == 0 && baseReading.Origin > 0 {
			reading.Timestamp = baseReading.Origin / int64(time.Millisecond)
		}
		switch strings.ToLower(baseReading.ResourceName) {
		case "vibration":
			reading.Vibration = value
			matched = true
		case "temperature":
			reading.Temperature = value
			matched = true
		case "humidity":
			humidity := value
			reading.Humidity = &humidity
		}
	}
	if !matched {
		ctx.LoggingClient().Info("Skipping event processing in ConvertToReading, no matching readings")
	}
	return reading, matched
}

// ScoreReading runs the serving model over the reading, or the heuristic
// estimator when no model serves or the detector output is unusable. Scoring
// itself never fails the pipeline: a registry or model outage degrades to the
// estimator and the reading is flagged Fallback.
func (p *ScoringPipeline) ScoreReading(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	if data == nil {
		return false, errors.New("no reading received")
	}
	reading, ok := data.(telemetry.SensorReading)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in ScoreReading")
		return false, nil
	}

	loaded, lookupErr := p.models.Serving(ml.ModelTypeAnomalyDetection)
	if lookupErr != nil {
		p.lc.Errorf("model lookup failed, falling back to the heuristic estimator: %v", lookupErr)
		loaded = nil
	}

	prediction, scoredByModel := p.modelPrediction(loaded, reading)
	if !scoredByModel {
		prediction = p.fallbackPrediction(reading)
	}

	scored := telemetry.ScoredReading{
		SensorReading:       reading,
		AnomalyScore:        prediction.AnomalyScore,
		RawScore:            prediction.RawScore,
		IsAnomaly:           prediction.IsAnomaly,
		Confidence:          prediction.Confidence,
		RiskLevel:           prediction.RiskLevel,
		ContributingFactors: prediction.ContributingFactors,
		Fallback:            !scoredByModel,
		CorrelationId: readingCorrelationId(
			ml.ModelTypeAnomalyDetection, reading.MachineID, reading.Timestamp),
	}
	if scoredByModel {
		scored.ModelType = loaded.Version.ModelType
		scored.ModelVersion = loaded.Version.Version
	}
	return true, scored
}

// modelPrediction scores with the serving ensemble, false when there is no
// usable model verdict for this reading
func (p *ScoringPipeline) modelPrediction(loaded *registry.LoadedModel, reading telemetry.SensorReading) (ml.AnomalyPrediction, bool) {
	if loaded == nil || loaded.Ensemble == nil {
		return ml.AnomalyPrediction{}, false
	}

	vector, err := features.Normalize(reading, loaded.Version.Features)
	if err != nil {
		p.lc.Warnf("feature normalization failed for %s: %v", reading.MachineID, err)
		return ml.AnomalyPrediction{}, false
	}

	prediction, err := loaded.Ensemble.Predict(vector.Values)
	if err != nil {
		p.lc.Errorf("ensemble prediction failed for %s: %v", reading.MachineID, err)
		return ml.AnomalyPrediction{}, false
	}
	if prediction.RawScore == 0 {
		// a dead-zero score is the legacy "no opinion" output, not a verdict
		return ml.AnomalyPrediction{}, false
	}
	return prediction, true
}

func (p *ScoringPipeline) fallbackPrediction(reading telemetry.SensorReading) ml.AnomalyPrediction {
	calibration := p.calibration.Current(context.Background())
	raw := features.EstimateScore(reading.Vibration, reading.Temperature, calibration)
	score := (1 - features.NormalizeScore(raw)) * 100
	return ml.AnomalyPrediction{
		IsAnomaly:    raw < rawScoreThreshold,
		AnomalyScore: score,
		RawScore:     raw,
		Confidence:   fallbackConfidence,
		RiskLevel:    ml.RiskLevelFor(score),
	}
}

// ClassifyHealth derives the health assessment and the live machine status
// from the scored reading
func (p *ScoringPipeline) ClassifyHealth(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	reading, ok := data.(telemetry.ScoredReading)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in ClassifyHealth")
		return false, nil
	}

	assessment := features.Classify(reading.Vibration, reading.Temperature, reading.RawScore)
	reading.HealthScore = assessment.Score
	reading.HealthStatus = assessment.Status
	reading.Status = features.DeriveStatus(ml.AnomalyPrediction{
		IsAnomaly: reading.IsAnomaly,
		RawScore:  reading.RawScore,
		RiskLevel: reading.RiskLevel,
	})

	p.telemetry.readingsScored.Inc(1)
	if reading.Status == telemetry.StatusAnomaly {
		p.telemetry.anomaliesFlagged.Inc(1)
	}
	return true, reading
}

// EvaluateTasks hands the reading to the task auto-creator. A degraded task
// layer never stops scoring, the failure is logged and the pipeline moves on.
func (p *ScoringPipeline) EvaluateTasks(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	reading, ok := data.(telemetry.ScoredReading)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in EvaluateTasks")
		return false, nil
	}

	scoredResult := ScoredResult{Reading: reading}
	created, err := p.taskCreator.MaybeCreateTask(reading)
	if err != nil {
		p.lc.Errorf("task auto-creation failed for %s: %v", reading.MachineID, err)
	} else if created != nil {
		scoredResult.Task = created
		p.telemetry.tasksAutoCreated.Inc(1)
	} else if reading.Status != telemetry.StatusNormal {
		p.telemetry.tasksDedupSkip.Inc(1)
	}
	return true, scoredResult
}

// PersistScore updates the live cache and writes the reading to the telemetry
// store. History is best effort: a storage outage is logged and scoring
// continues.
func (p *ScoringPipeline) PersistScore(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	scoredResult, ok := data.(ScoredResult)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in PersistScore")
		return false, nil
	}

	p.live.Update(scoredResult.Reading)
	if err := p.store.SaveScoredReading(context.Background(), scoredResult.Reading); err != nil {
		p.lc.Errorf("failed to persist scored reading for %s: %v", scoredResult.Reading.MachineID, err)
	}
	return true, scoredResult
}

// BuildEvent turns a state transition into an anomaly event. Readings that
// leave the machine's event state unchanged pass through without one.
func (p *ScoringPipeline) BuildEvent(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	scoredResult, ok := data.(ScoredResult)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in BuildEvent")
		return false, nil
	}

	currentStats := buildEventStats(scoredResult.Reading)

	p.mutex.Lock()
	generateEvent, isNewEvent := p.checkIfNewEvent(scoredResult.Reading.MachineID, &currentStats)
	p.mutex.Unlock()

	envelope := PublishEnvelope{Result: scoredResult}
	if generateEvent {
		event := p.buildEvent(scoredResult, currentStats, isNewEvent)
		envelope.Event = &event
	}
	return true, envelope
}

// checkIfNewEvent reports whether the transition warrants an event and whether
// it opens a brand new one rather than updating or closing an existing one.
// Also keeps track of the last state per machine in eventStatByMachine.
func (p *ScoringPipeline) checkIfNewEvent(machineID string, currentEventStat *EventStats) (bool, bool) {
	generateEvent := false
	freshOpen := false
	previous, seen := p.eventStatByMachine[machineID]
	if !seen {
		// nothing to close on a machine we have never flagged
		generateEvent = currentEventStat.Open
		freshOpen = currentEventStat.Open
	} else if previous.Open != currentEventStat.Open {
		generateEvent = true
		freshOpen = currentEventStat.Open
	} else if previous.Open && currentEventStat.Open && previous.LastSeverity != currentEventStat.LastSeverity {
		generateEvent = true
	}

	p.eventStatByMachine[machineID] = *currentEventStat

	p.lc.Infof("event summary: machine: %s, will generate?: %t, stats: %v",
		machineID, generateEvent, *currentEventStat)
	return generateEvent, freshOpen
}

func (p *ScoringPipeline) buildEvent(scoredResult ScoredResult, eventStats EventStats, isNewEvent bool) dto.AnomalyEvent {
	reading := scoredResult.Reading
	currentTime := time.Now().Unix() * 1000
	correlationId := buildCorrelationId(ml.ModelTypeAnomalyDetection, reading.MachineID)

	event := dto.AnomalyEvent{
		Id:             "",
		EquipmentName:  reading.MachineID,
		Class:          dto.EVENT_CLASS_ANOMALY,
		EventType:      "AnomalyDetected",
		Name:           "AnomalyDetected",
		Msg:            fmt.Sprintf("%s:%s", reading.MachineID, eventStats.EventMessage),
		Severity:       eventStats.LastSeverity,
		RiskLevel:      reading.RiskLevel,
		RelatedMetrics: eventStats.RelatedMetrics,
		Thresholds:     eventStats.Thresholds,
		ActualValues:   eventStats.ActualValues,
		Modified:       currentTime,
		SourceNode:     p.sourceNode,
		EventSource:    "PLANTPULSE",
		CorrelationId:  correlationId,
		IsNewEvent:     isNewEvent,
	}

	if eventStats.Open {
		event.Status = dto.EVENT_STATUS_OPEN
		event.Created = currentTime
	} else {
		event.Status = dto.EVENT_STATUS_CLOSED
	}

	event.AdditionalData = make(map[string]string)
	event.AdditionalData["vibration"] = fmt.Sprintf("%f", reading.Vibration)
	event.AdditionalData["temperature"] = fmt.Sprintf("%f", reading.Temperature)
	event.AdditionalData["healthStatus"] = reading.HealthStatus
	event.AdditionalData["fallback"] = strconv.FormatBool(reading.Fallback)
	if reading.ModelVersion != "" {
		event.AdditionalData["modelVersion"] = reading.ModelVersion
	}

	if scoredResult.Task != nil {
		event.Tasks = []dto.TaskRef{{
			Id:       strconv.FormatInt(scoredResult.Task.ID, 10),
			Title:    scoredResult.Task.Title,
			Priority: scoredResult.Task.Priority,
			Status:   scoredResult.Task.Status,
		}}
	}

	p.lc.Infof("Event built for machine: %s, Status: %s", event.EquipmentName, event.Status)
	return event
}

// PublishEvent sends the anomaly event to the message bus. Export failures are
// counted and logged, the remaining export targets still run.
func (p *ScoringPipeline) PublishEvent(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	if data == nil {
		return false, errors.New("no event received")
	}
	envelope, ok := data.(PublishEnvelope)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in PublishEvent")
		return false, nil
	}
	if envelope.Event == nil || p.mqttSender == nil {
		return true, envelope
	}

	if sent, _ := p.mqttSender.MQTTSend(ctx, *envelope.Event); !sent {
		ctx.LoggingClient().Errorf("%s, event: %v", EVENT_PUB_ERR_MSG, *envelope.Event)
		p.telemetry.exportErrors.Inc(1)
	} else {
		ctx.LoggingClient().Infof("Anomaly event successfully published: %v", *envelope.Event)
	}
	return true, envelope
}

// IndexEvent writes the anomaly event to the search index, closing matching
// open events when the machine recovered
func (p *ScoringPipeline) IndexEvent(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	envelope, ok := data.(PublishEnvelope)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in IndexEvent")
		return false, nil
	}
	if envelope.Event == nil || p.exporter == nil {
		return true, envelope
	}

	if _, indexed := p.exporter.SaveEventToOpenSearch(ctx, *envelope.Event); indexed != nil {
		if err, failed := indexed.(error); failed {
			ctx.LoggingClient().Errorf("failed to index anomaly event: %v", err)
			p.telemetry.exportErrors.Inc(1)
		}
	}
	return true, envelope
}

// ExportRemoteWrite ships the scored reading to the remote-write endpoint.
// Terminal stage: the pipeline ends here whether or not an exporter is
// configured.
func (p *ScoringPipeline) ExportRemoteWrite(ctx interfaces.AppFunctionContext, data interface{}) (continuePipeline bool, result interface{}) {
	if data == nil {
		return false, errors.New("no event received")
	}
	envelope, ok := data.(PublishEnvelope)
	if !ok {
		ctx.LoggingClient().Info("Skipping event processing in ExportRemoteWrite")
		return false, nil
	}
	if p.remoteWrite == nil {
		return false, nil
	}

	if err := p.remoteWrite.Export(envelope.Result.Reading); err != nil {
		ctx.LoggingClient().Errorf("remote write export failed: %v", err)
		p.telemetry.exportErrors.Inc(1)
	}
	return false, nil
}
