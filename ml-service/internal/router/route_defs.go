/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package router

import (
	"net/http"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/labstack/echo/v4"
)

func (r *Router) addModelRoutes() {
	r.addGetRegistrySummaryRoute()
	r.addGetActiveModelRoute()
	r.addPromoteModelVersionRoute()
	r.addRollbackModelRoute()
	r.addSetABTrafficRoute()
	r.addDeleteModelVersionRoute()
	r.addDeprecateModelVersionRoute()
	r.addPredictMTTFRoute()
}

func (r *Router) addTrainingRoutes() {
	r.addSubmitTrainingJobRoute()
	r.addUploadTrainingDataRoute()
	r.addGetTrainingJobsRoute()
	r.addGetTrainingJobRoute()
	r.addResetModelRoute()
}

func (r *Router) addTaskRoutes() {
	r.addCreateTaskRoute()
	r.addGetTasksRoute()
	r.addGetTaskRoute()
	r.addUpdateTaskRoute()
}

// @Summary      Get Registry Summary
// @Description  Lists every registered version of a model type with the currently ACTIVE version.
// @Tags         ML Management - Model Registry
// @Param        modelType  path     string  true  "Model type, e.g. anomaly_detection"
// @Success      200        {object} ml.RegistrySummary "Registry summary"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/registry/{modelType} [get]
func (r *Router) addGetRegistrySummaryRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/registry/:modelType",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.getRegistrySummary(c)
		},
		http.MethodGet)
}

// @Summary      Get Active Model Version
// @Description  Returns the ACTIVE model version document for a model type.
// @Tags         ML Management - Model Registry
// @Param        modelType  path     string  true  "Model type, e.g. anomaly_detection"
// @Success      200        {object} ml.ModelVersion "Active model version"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/registry/{modelType}/active [get]
func (r *Router) addGetActiveModelRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/registry/:modelType/active",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.getActiveModel(c)
		},
		http.MethodGet)
}

// @Summary      Promote Model Version
// @Description  Promotes a STAGING version to ACTIVE. The previously ACTIVE version is archived.
// @Tags         ML Management - Model Registry
// @Param        modelType  path     string  true  "Model type"
// @Param        version    path     string  true  "Semantic version to promote, e.g. 1.2.0"
// @Success      200        "Version promoted"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			409			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/registry/{modelType}/promote/{version} [post]
func (r *Router) addPromoteModelVersionRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/registry/:modelType/promote/:version",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.promoteModelVersion(c)
		},
		http.MethodPost)
}

// @Summary      Rollback Model
// @Description  Re-activates an ARCHIVED version. Without toVersion the most recently archived version wins.
// @Tags         ML Management - Model Registry
// @Param        modelType  path     string  true   "Model type"
// @Param        toVersion  query    string  false  "Explicit version to roll back to"
// @Success      200        "New active version"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/registry/{modelType}/rollback [post]
func (r *Router) addRollbackModelRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/registry/:modelType/rollback",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.rollbackModel(c)
		},
		http.MethodPost)
}

// @Summary      Set A/B Traffic Split
// @Description  Assigns traffic percentages to model versions for A/B scoring. Percentages must sum to 100.
// @Tags         ML Management - Model Registry
// @Param        modelType  path  string             true  "Model type"
// @Param        Body       body  map[string]float64 true  "Version to traffic percentage map"
// @Success      200        "Traffic allocation updated"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/registry/{modelType}/traffic [post]
func (r *Router) addSetABTrafficRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/registry/:modelType/traffic",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.setABTraffic(c)
		},
		http.MethodPost)
}

// @Summary      Delete Model Version
// @Description  Deletes a model version and its artifacts. ACTIVE versions require force=true.
// @Tags         ML Management - Model Registry
// @Param        modelType  path   string  true   "Model type"
// @Param        version    path   string  true   "Version to delete"
// @Param        force      query  bool    false  "Delete even when the version is ACTIVE"
// @Success      204        "Version deleted"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			409			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/registry/{modelType}/version/{version} [delete]
func (r *Router) addDeleteModelVersionRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/registry/:modelType/version/:version",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.deleteModelVersion(c)
		},
		http.MethodDelete)
}

// @Summary      Deprecate Model Version
// @Description  Marks a version DEPRECATED so it is skipped by rollback.
// @Tags         ML Management - Model Registry
// @Param        modelType  path  string  true  "Model type"
// @Param        version    path  string  true  "Version to deprecate"
// @Success      200        "Version deprecated"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/registry/{modelType}/version/{version}/deprecate [post]
func (r *Router) addDeprecateModelVersionRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/registry/:modelType/version/:version/deprecate",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.deprecateModelVersion(c)
		},
		http.MethodPost)
}

// @Summary      Predict Mean Time To Failure
// @Description  Scores an equipment profile against the ACTIVE prediction model and returns MTTF with a risk level.
// @Tags         ML Management - Prediction
// @Param        Body  body     map[string]float64 true "Equipment profile, feature name to value"
// @Success      200   {object} ml.MTTFPrediction "MTTF prediction"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/predict_mttf [post]
func (r *Router) addPredictMTTFRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/predict_mttf",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.predictMTTF(c)
		},
		http.MethodPost)
}

// @Summary      Submit Training Job
// @Description  Queues an asynchronous training job over the recent telemetry window. The trained model registers as STAGING.
// @Tags         ML Management - Training
// @Param        Body  body     training.TrainingRequest true "Training request"
// @Success      202   {object} ml.TrainingJobSummary "Job accepted"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			409			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/training_job [post]
func (r *Router) addSubmitTrainingJobRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/training_job",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.submitTrainingJob(c)
		},
		http.MethodPost)
}

// @Summary      Train From Uploaded Dataset
// @Description  Accepts a CSV dataset upload and queues a training job over it. Non-numeric columns are dropped, missing values are mean-imputed.
// @Tags         ML Management - Training
// @Param        file          formData  file    true   "CSV dataset with a header row"
// @Param        name          query     string  false  "Job name"
// @Param        modelType     query     string  false  "Model type to train, defaults to anomaly_detection"
// @Param        algorithm     query     string  false  "Algorithm, e.g. ensemble or isolation_forest"
// @Param        targetColumn  query     string  false  "Target column for predictive training, defaults to MTTF"
// @Success      202           {object}  ml.TrainingJobSummary "Job accepted"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			409			{object}	error	"{"message":"Error message"}"
// @Failure			413			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/training_job/upload [post]
func (r *Router) addUploadTrainingDataRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/training_job/upload",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.uploadTrainingData(c)
		},
		http.MethodPost)
}

// @Summary      Get Training Jobs
// @Description  Lists training jobs, newest first.
// @Tags         ML Management - Training
// @Success      200  {array} ml.TrainingJob "Training jobs"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/training_job [get]
func (r *Router) addGetTrainingJobsRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/training_job",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.getTrainingJobs(c)
		},
		http.MethodGet)
}

// @Summary      Get Training Job by Name
// @Description  Returns one training job with its current status.
// @Tags         ML Management - Training
// @Param        name  path     string  true  "Job name"
// @Success      200   {object} ml.TrainingJob "Training job"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/training_job/{name} [get]
func (r *Router) addGetTrainingJobRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/training_job/:name",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.getTrainingJob(c)
		},
		http.MethodGet)
}

// @Summary      Reset Anomaly Model
// @Description  Refits a baseline isolation forest from recent telemetry, registers it as a new major version and promotes it to ACTIVE.
// @Tags         ML Management - Training
// @Success      200  {object} ml.ModelVersion "Promoted model version"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Failure			503			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/reset_model [post]
func (r *Router) addResetModelRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/reset_model",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.resetModel(c)
		},
		http.MethodPost)
}

// @Summary      Create Maintenance Task
// @Description  Creates a manual maintenance task. The task is placed on the Eisenhower matrix from its priority and due date.
// @Tags         ML Management - Tasks
// @Param        Body  body     task.CreateTaskRequest true "Task details"
// @Success      201   {object} task.MaintenanceTask "Created task"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/task [post]
func (r *Router) addCreateTaskRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/task",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.createTask(c)
		},
		http.MethodPost)
}

// @Summary      Get Maintenance Tasks
// @Description  Lists maintenance tasks ordered by Eisenhower quadrant and due date.
// @Tags         ML Management - Tasks
// @Param        equipmentId  query  string  false  "Filter by equipment"
// @Param        status       query  string  false  "Filter by status"
// @Param        priority     query  string  false  "Filter by priority"
// @Param        quadrant     query  string  false  "Filter by Eisenhower quadrant"
// @Param        autoOnly     query  bool    false  "Only auto-created tasks"
// @Param        limit        query  int     false  "Maximum rows to return"
// @Success      200          {array} task.MaintenanceTask "Tasks"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/task [get]
func (r *Router) addGetTasksRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/task",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.getTasks(c)
		},
		http.MethodGet)
}

// @Summary      Get Maintenance Task by Id
// @Description  Returns one maintenance task.
// @Tags         ML Management - Tasks
// @Param        id   path     int  true  "Task id"
// @Success      200  {object} task.MaintenanceTask "Task"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/task/{id} [get]
func (r *Router) addGetTaskRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/task/:id",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.getTask(c)
		},
		http.MethodGet)
}

// @Summary      Update Maintenance Task
// @Description  Updates status, assignee or priority of a task. Completing a task stamps its completion time.
// @Tags         ML Management - Tasks
// @Param        id    path     int                    true "Task id"
// @Param        Body  body     task.UpdateTaskRequest true "Fields to update"
// @Success      200   {object} task.MaintenanceTask "Updated task"
// @Failure			400			{object}	error	"{"message":"Error message"}"
// @Failure			404			{object}	error	"{"message":"Error message"}"
// @Failure			500			{object}	error	"{"message":"Error message"}"
// @Router       /api/v3/ml_management/task/{id} [patch]
func (r *Router) addUpdateTaskRoute() {
	_ = r.service.AddCustomRoute(
		"/api/v3/ml_management/task/:id",
		interfaces.Authenticated,
		func(c echo.Context) error {
			return r.updateTask(c)
		},
		http.MethodPatch)
}
