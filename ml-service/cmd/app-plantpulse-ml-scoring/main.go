/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	bootstrapinterfaces "github.com/edgexfoundry/go-mod-bootstrap/v3/bootstrap/interfaces"

	"plantpulse/common/client"
	commService "plantpulse/common/service"
	"plantpulse/common/telemetry"
	"plantpulse/ml-service/internal/pipeline"
)

var (
	serviceInt        interfaces.ApplicationService
	scoringPipeline   *pipeline.ScoringPipeline
	appServiceCreator commService.AppServiceCreator
	osExit            = os.Exit
	initialEnvVars    map[string]string
)

func getAppService() {
	if appServiceCreator == nil {
		appServiceCreator = &commService.AppService{}
	}
	svc, ok := appServiceCreator.NewAppService(client.PulseMLScoringServiceKey)
	if !ok {
		err := fmt.Errorf("failed to start App Service: %s", client.PulseMLScoringServiceKey)
		fmt.Println(err)
		exitWrapper(-1)
	} else {
		serviceInt = svc
	}
}

func main() {
	captureInitialEnvVars()

	if serviceInt == nil {
		getAppService()
	}
	service := serviceInt
	lc := service.LoggingClient()

	appConfig := pipeline.NewScoringConfig()
	appConfig.LoadConfigurations(service)

	metricsManager, err := telemetry.NewMetricsManager(service, client.PulseMLScoringServiceName)
	if err != nil {
		lc.Error("Failed to create metrics manager. Returned error: ", err.Error())
		exitWrapper(-1)
	}

	if scoringPipeline == nil {
		var metricsMgr bootstrapinterfaces.MetricsManager
		if metricsManager != nil { // condition for testing
			metricsMgr = metricsManager.MetricsMgr
		}
		scoringPipeline = pipeline.NewScoringPipeline(service, appConfig, metricsMgr)
	}
	if scoringPipeline == nil {
		lc.Error("Failed to initialize the scoring pipeline, check the telemetry and task store connections")
		exitWrapper(-1)
		return
	}

	router := pipeline.NewRouter(service, scoringPipeline)
	router.AddRoutes()

	err = service.AddFunctionsPipelineForTopics(
		"plc-telemetry-scoring-pipeline",
		appConfig.TelemetryTopics,
		scoringPipeline.ConvertToReading,
		scoringPipeline.ScoreReading,
		scoringPipeline.ClassifyHealth,
		scoringPipeline.EvaluateTasks,
		scoringPipeline.PersistScore,
		scoringPipeline.BuildEvent,
		scoringPipeline.PublishEvent,
		scoringPipeline.IndexEvent,
		scoringPipeline.ExportRemoteWrite,
	)
	if err != nil {
		lc.Errorf("AddFunctionsPipelineForTopics returned error: %s", err.Error())
		exitWrapper(-1)
	}

	if metricsManager != nil {
		metricsManager.Run()
	}

	err = service.Run()
	if err != nil {
		lc.Errorf("Run returned error: %v", err)
		exitWrapper(-1)
	}

	lc.Info("plantpulse ml-scoring terminating")
	exitWrapper(0)
}

func captureInitialEnvVars() {
	env := os.Environ()
	initialEnvVars = make(map[string]string)
	for _, e := range env {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			initialEnvVars[parts[0]] = parts[1]
		}
	}
}

func exitWrapper(code int) {
	osExit(code)
}
