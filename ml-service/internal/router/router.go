/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package router

import (
	"github.com/dlclark/regexp2"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/go-playground/validator/v10"

	"plantpulse/ml-service/internal/training"
	"plantpulse/ml-service/pkg/db/redis"
	"plantpulse/ml-service/pkg/registry"
	"plantpulse/ml-service/pkg/tasks"
	"plantpulse/ml-service/pkg/tsdb"
)

// Router is the management-plane REST surface: model lifecycle, training
// jobs and maintenance tasks. Scoring stays on its own service so a heavy
// training run never blocks the message pipeline.
type Router struct {
	service         interfaces.ApplicationService
	appConfig       *ManagementConfig
	modelRegistry   registry.RegistryInterface
	trainingService *training.TrainingService
	taskStore       tasks.TaskStoreInterface
	readingStore    tsdb.ReadingStoreInterface
	validate        *validator.Validate
}

func NewRouter(
	service interfaces.ApplicationService,
	appConfig *ManagementConfig,
	dbClient redis.MLDbInterface,
	readingStore tsdb.ReadingStoreInterface,
) *Router {
	router := new(Router)
	router.service = service
	router.appConfig = appConfig
	router.readingStore = readingStore

	lc := service.LoggingClient()
	artifacts := registry.NewArtifactStore(appConfig.LocalModelBaseDir, lc)
	router.modelRegistry = registry.NewModelRegistry(dbClient, artifacts, lc)
	router.trainingService = training.NewTrainingService(
		service,
		dbClient,
		router.modelRegistry,
		readingStore,
	)
	router.taskStore = tasks.NewTaskStore(service)

	router.validate = validator.New()
	router.validate.RegisterValidation("matchRegex", matchRegex)

	return router
}

// AddRoutes adds routes to the service
func (r *Router) AddRoutes() {
	r.addModelRoutes()
	r.addTrainingRoutes()
	r.addTaskRoutes()
	r.addSwaggerRoutes()
}

// matchRegex backs the matchRegex validate tag, the pattern comes from the
// tag parameter
func matchRegex(fl validator.FieldLevel) bool {
	pattern := regexp2.MustCompile(fl.Param(), regexp2.None)
	isMatch, err := pattern.MatchString(fl.Field().String())
	return err == nil && isMatch
}
