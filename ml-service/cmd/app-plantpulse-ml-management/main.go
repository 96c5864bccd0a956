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

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"

	"plantpulse/common/client"
	"plantpulse/common/db"
	"plantpulse/common/service"
	"plantpulse/common/telemetry"
	"plantpulse/ml-service/internal/router"
	"plantpulse/ml-service/pkg/db/redis"
	"plantpulse/ml-service/pkg/tsdb"
)

var (
	serviceInt        interfaces.ApplicationService
	dbClient          redis.MLDbInterface
	readingStore      tsdb.ReadingStoreInterface
	appServiceCreator service.AppServiceCreator
	osExit            = os.Exit
)

func getAppService() {
	if appServiceCreator == nil {
		appServiceCreator = &service.AppService{}
	}
	svc, ok := appServiceCreator.NewAppServiceWithTargetType(client.PulseMLManagementServiceKey, new(interface{}))
	if !ok {
		fmt.Printf("Failed to start App Service: %s\n", client.PulseMLManagementServiceKey)
		exitWrapper(-1)
	} else {
		serviceInt = svc
	}
}

func main() {
	if serviceInt == nil {
		getAppService()
	}
	svc := serviceInt
	lc := svc.LoggingClient()

	dbConfig := db.NewDatabaseConfig()
	dbConfig.LoadAppConfigurations(svc)
	if dbClient == nil {
		dbClient = redis.NewDBClient(dbConfig)
	}

	appConfig := router.NewManagementConfig()
	appConfig.LoadConfigurations(svc)

	metricsManager, err := telemetry.NewMetricsManager(svc, client.PulseMLManagementServiceName)
	if err != nil {
		lc.Error("Failed to create metrics manager. Returned error: ", err.Error())
		exitWrapper(-1)
	}

	if readingStore == nil {
		store, err := tsdb.NewReadingStore(svc)
		if err != nil {
			lc.Errorf("Failed to initialize the telemetry store: %v", err)
			exitWrapper(-1)
			return
		}
		readingStore = store
	}

	router.NewRouter(svc, appConfig, dbClient, readingStore).AddRoutes()

	if metricsManager != nil { // condition for testing
		metricsManager.Run()
	}

	err = svc.Run()
	if err != nil {
		lc.Error("Run returned error: ", err.Error())
		exitWrapper(-1)
	}

	lc.Info("plantpulse ml-management terminating")
	exitWrapper(0)
}

func exitWrapper(code int) {
	osExit(code)
}
