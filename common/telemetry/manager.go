/*******************************************************************************
* Contributors: BMC Software, Inc. - BMC Helix Edge
*
* (c) Copyright 2020-2025 BMC Software, Inc.
*******************************************************************************/

package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	sdkinterfaces "github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/go-mod-bootstrap/v3/bootstrap/interfaces"
	"github.com/edgexfoundry/go-mod-bootstrap/v3/bootstrap/metrics"
)

// MetricsManager runs the bootstrap metrics manager with the MQTT reporter
// both services use for their pp_ counters and gauges.
type MetricsManager struct {
	wg         sync.WaitGroup
	Ctx        context.Context
	MetricsMgr interfaces.MetricsManager
}

// NewMetricsManager wires a bootstrap manager to the MQTT metric reporter.
// MetricReportInterval (seconds) and MetricPublishTopicPrefix are required
// settings; a service without them runs unmetered.
func NewMetricsManager(service sdkinterfaces.ApplicationService, serviceName string) (*MetricsManager, error) {
	lc := service.LoggingClient()

	rawInterval, err := service.GetAppSetting("MetricReportInterval")
	if err != nil {
		lc.Errorf("failed to retrieve MetricReportInterval from configuration: %s", err.Error())
		return nil, err
	}
	seconds, err := strconv.Atoi(rawInterval)
	if err != nil {
		lc.Errorf("invalid MetricReportInterval in configuration: %s", err.Error())
		return nil, err
	}

	baseTopic, err := service.GetAppSetting("MetricPublishTopicPrefix")
	if err != nil {
		lc.Errorf("failed to retrieve MetricPublishTopicPrefix from configuration: %s", err.Error())
		return nil, err
	}

	reporter := NewMQTTMetricReporter(service, baseTopic, serviceName, map[string]string{})
	manager := metrics.NewManager(lc, time.Duration(seconds)*time.Second, reporter)
	if manager == nil {
		lc.Errorf("failed to create metrics manager")
		return nil, fmt.Errorf("failed to create metrics manager")
	}

	return &MetricsManager{
		Ctx:        context.Background(),
		MetricsMgr: manager,
	}, nil
}

// Run starts periodic reporting and returns immediately.
func (m *MetricsManager) Run() {
	m.MetricsMgr.Run(m.Ctx, &m.wg)
}
