/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package tasks

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/jackc/pgconn"

	"plantpulse/common/client"
	"plantpulse/common/db"
	"plantpulse/ml-service/pkg/dto/task"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

const (
	DefaultDedupWindow = 24 * time.Hour

	causeVibrationThreshold   = 75.0
	causeTemperatureThreshold = 70.0
	causeHealthThreshold      = 40.0
	genericCause              = "anomaly detected"

	uniqueViolationCode = "23505"
)

const (
	taskTitleTemplate = `{{ .EquipmentID }}: {{ .PrimaryCause }}`

	taskDescriptionTemplate = `Created automatically from live condition monitoring.
Status {{ .Status }}, health score {{ printf "%.1f" .HealthScore }} ({{ .HealthStatus }}).
Findings: {{ join "; " .Causes }}.
Last reading: vibration {{ printf "%.1f" .Vibration }}, temperature {{ printf "%.1f" .Temperature }} C.`
)

// nowFunc is a seam so dedup-window tests can pin the clock
var nowFunc = time.Now

type TaskCreatorInterface interface {
	MaybeCreateTask(reading telemetry.ScoredReading) (*task.MaintenanceTask, error)
}

type taskTemplateData struct {
	EquipmentID  string
	Status       string
	HealthScore  float64
	HealthStatus string
	Vibration    float64
	Temperature  float64
	Causes       []string
	PrimaryCause string
}

// AutoCreator turns WARNING/ANOMALY readings into maintenance tasks. The
// dedup check and insert run under a per-equipment redis lock so two
// consumers scoring the same machine cannot both file a task.
type AutoCreator struct {
	store           TaskStoreInterface
	redisClient     client.DBClientInterface
	lc              logger.LoggingClient
	dedupWindow     time.Duration
	titleTmpl       *template.Template
	descriptionTmpl *template.Template
}

func NewAutoCreator(
	store TaskStoreInterface,
	redisClient client.DBClientInterface,
	lc logger.LoggingClient,
	dedupWindow time.Duration,
) (*AutoCreator, error) {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}

	titleTmpl, err := newTaskTemplate("taskTitle", taskTitleTemplate)
	if err != nil {
		return nil, err
	}
	descriptionTmpl, err := newTaskTemplate("taskDescription", taskDescriptionTemplate)
	if err != nil {
		return nil, err
	}

	return &AutoCreator{
		store:           store,
		redisClient:     redisClient,
		lc:              lc,
		dedupWindow:     dedupWindow,
		titleTmpl:       titleTmpl,
		descriptionTmpl: descriptionTmpl,
	}, nil
}

func newTaskTemplate(name string, text string) (*template.Template, error) {
	funcMap := sprig.TxtFuncMap()
	tmpl, err := template.New(name).Funcs(funcMap).Parse(text)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

func taskLockName(equipmentID string) string {
	return db.TaskCreationLock + "|" + equipmentID
}

// MaybeCreateTask files a task for the reading, or returns (nil, nil) when
// the status does not warrant one or a task for this equipment already
// exists inside the dedup window.
func (c *AutoCreator) MaybeCreateTask(reading telemetry.ScoredReading) (*task.MaintenanceTask, error) {
	if reading.Status != telemetry.StatusAnomaly && reading.Status != telemetry.StatusWarning {
		return nil, nil
	}

	mutex, lockErr := c.redisClient.AcquireRedisLock(taskLockName(reading.MachineID))
	if lockErr != nil {
		return nil, lockErr
	}
	defer mutex.Unlock()

	now := nowFunc()
	existing, err := c.store.LatestTaskFor(reading.MachineID, now.Add(-c.dedupWindow))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		c.lc.Debugf("skipping task creation for %s, task %d from %s is inside the dedup window",
			reading.MachineID, existing.ID, existing.CreatedAt.Format(time.RFC3339))
		return nil, nil
	}

	causes := causesFor(reading)
	priority, dueDays := PriorityFor(reading.Status, reading.HealthScore)
	urgency, importance, orderPriority, quadrant := ClassifyMatrix(
		priority, float64(dueDays), reading.Status == telemetry.StatusAnomaly)

	data := taskTemplateData{
		EquipmentID:  reading.MachineID,
		Status:       reading.Status,
		HealthScore:  reading.HealthScore,
		HealthStatus: reading.HealthStatus,
		Vibration:    reading.Vibration,
		Temperature:  reading.Temperature,
		Causes:       causes,
		PrimaryCause: causes[0],
	}
	title, err := c.render(c.titleTmpl, data)
	if err != nil {
		return nil, err
	}
	description, err := c.render(c.descriptionTmpl, data)
	if err != nil {
		return nil, err
	}

	newTask := task.MaintenanceTask{
		EquipmentID:        reading.MachineID,
		Title:              title,
		Description:        description,
		DueDate:            now.Add(time.Duration(dueDays) * 24 * time.Hour),
		Priority:           priority,
		Status:             task.StatusNotStarted,
		Urgency:            urgency,
		Importance:         importance,
		OrderPriority:      orderPriority,
		EisenhowerQuadrant: quadrant,
		AnomalyID:          reading.CorrelationId,
		AutoCreated:        true,
		CreatedBy:          "plantpulse-auto",
	}

	created, err := c.store.CreateTask(newTask)
	if err != nil {
		// a replayed event hits the anomaly-id unique index; that is the
		// dedup outcome, not a failure
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			c.lc.Debugf("task for anomaly %s already exists, skipping", reading.CorrelationId)
			return nil, nil
		}
		return nil, err
	}

	c.lc.Infof("auto-created maintenance task %d for %s (%s, %s, due %s)",
		created.ID, created.EquipmentID, created.Priority, created.EisenhowerQuadrant,
		created.DueDate.Format(time.RFC3339))
	return &created, nil
}

func (c *AutoCreator) render(tmpl *template.Template, data taskTemplateData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		c.lc.Errorf("Error rendering task template %s: %v", tmpl.Name(), err)
		return "", err
	}
	return sb.String(), nil
}

// causesFor lists the thresholds the reading crossed. Status can be set by
// the ensemble vote alone with every rule numerically clean, hence the
// generic fallback.
func causesFor(reading telemetry.ScoredReading) []string {
	var causes []string
	if reading.Vibration > causeVibrationThreshold {
		causes = append(causes, fmt.Sprintf("High vibration: %.1f", reading.Vibration))
	}
	if reading.Temperature > causeTemperatureThreshold {
		causes = append(causes, fmt.Sprintf("High temperature: %.1f°C", reading.Temperature))
	}
	if reading.HealthScore < causeHealthThreshold {
		causes = append(causes, fmt.Sprintf("Low health score: %.1f", reading.HealthScore))
	}
	if len(causes) == 0 {
		causes = append(causes, genericCause)
	}
	return causes
}
