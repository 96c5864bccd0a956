/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package pipeline

import (
	"github.com/edgexfoundry/go-mod-bootstrap/v3/bootstrap/interfaces"
	gometrics "github.com/rcrowley/go-metrics"

	common "plantpulse/common/telemetry"
)

type Telemetry struct {
	readingMessages  gometrics.Counter
	readingsScored   gometrics.Counter
	anomaliesFlagged gometrics.Counter
	tasksAutoCreated gometrics.Counter
	tasksDedupSkip   gometrics.Counter
	exportErrors     gometrics.Counter
}

func NewTelemetry(serviceName string, metricsManager interfaces.MetricsManager, hostName string) *Telemetry {
	telemetry := Telemetry{}
	telemetry.readingMessages = gometrics.NewCounter()
	telemetry.readingsScored = gometrics.NewCounter()
	telemetry.anomaliesFlagged = gometrics.NewCounter()
	telemetry.tasksAutoCreated = gometrics.NewCounter()
	telemetry.tasksDedupSkip = gometrics.NewCounter()
	telemetry.exportErrors = gometrics.NewCounter()

	tags := make(map[string]string)
	tags["data_provider_service"] = serviceName
	tags["host"] = hostName

	if metricsManager != nil {
		metricsManager.Register(common.MetricReadingMessageCount, telemetry.readingMessages, tags)
		metricsManager.Register(common.MetricReadingsScored, telemetry.readingsScored, tags)
		metricsManager.Register(common.MetricAnomaliesFlagged, telemetry.anomaliesFlagged, tags)
		metricsManager.Register(common.MetricTasksAutoCreated, telemetry.tasksAutoCreated, tags)
		metricsManager.Register(common.MetricTasksDedupSkipped, telemetry.tasksDedupSkip, tags)
		metricsManager.Register(common.MetricExportErrors, telemetry.exportErrors, tags)
	}

	return &telemetry
}
