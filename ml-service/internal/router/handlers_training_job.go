/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"plantpulse/common/utils"
	"plantpulse/ml-service/internal/training"
)

func (r *Router) submitTrainingJob(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()
	lc.Info("Request to submit a training job")

	var request training.TrainingRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&request); err != nil {
		lc.Errorf("Failed to decode request body into TrainingRequest struct  %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Error parsing request body")
	}

	userId, pulseErr := utils.GetUserIdFromHeader(c.Request(), r.service)
	if pulseErr != nil {
		lc.Errorf(pulseErr.Message())
	}
	request.CreatedBy = userId

	job, pulseErr := r.trainingService.SubmitTrainingJob(request, nil)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	lc.Infof("Accepted training job %s for model type %s", job.Name, job.ModelType)
	_ = c.JSON(http.StatusAccepted, job.Summary())
	return nil
}

func (r *Router) uploadTrainingData(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()
	lc.Info("Request to train from an uploaded dataset")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		lc.Errorf("Failed to get file header. Error: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read file")
	}
	if maxSize := r.appConfig.MaxUploadSizeMb * 1024 * 1024; fileHeader.Size > maxSize {
		lc.Errorf("Rejected dataset %s, %d bytes is over the upload limit", fileHeader.Filename, fileHeader.Size)
		return echo.NewHTTPError(
			http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Uploaded file exceeds the %dMB limit", r.appConfig.MaxUploadSizeMb),
		)
	}

	file, err := fileHeader.Open()
	if err != nil {
		lc.Errorf("Failed to open the uploaded file %s. Error: %v", fileHeader.Filename, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open file")
	}
	defer file.Close()

	dataset, err := training.LoadCSV(file)
	if err != nil {
		lc.Errorf("Failed to parse the uploaded file %s. Error: %v", fileHeader.Filename, err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request := training.TrainingRequest{
		Name:         c.QueryParam("name"),
		ModelType:    c.QueryParam("modelType"),
		Algorithm:    c.QueryParam("algorithm"),
		TargetColumn: c.QueryParam("targetColumn"),
	}
	userId, pulseErr := utils.GetUserIdFromHeader(c.Request(), r.service)
	if pulseErr != nil {
		lc.Errorf(pulseErr.Message())
	}
	request.CreatedBy = userId

	job, pulseErr := r.trainingService.SubmitTrainingJob(request, dataset)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	lc.Infof("Accepted training job %s over dataset %s with %d rows",
		job.Name, fileHeader.Filename, len(dataset.Rows))
	_ = c.JSON(http.StatusAccepted, job.Summary())
	return nil
}

func (r *Router) getTrainingJobs(c echo.Context) *echo.HTTPError {
	jobs, pulseErr := r.trainingService.GetJobs()
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	_ = c.JSON(http.StatusOK, jobs)
	return nil
}

func (r *Router) getTrainingJob(c echo.Context) *echo.HTTPError {
	name := c.Param("name")

	job, pulseErr := r.trainingService.GetJob(name)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	_ = c.JSON(http.StatusOK, job)
	return nil
}

func (r *Router) resetModel(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()
	lc.Info("Request to reset the anomaly model from recent telemetry")

	userId, pulseErr := utils.GetUserIdFromHeader(c.Request(), r.service)
	if pulseErr != nil {
		lc.Errorf(pulseErr.Message())
	}

	version, pulseErr := r.trainingService.ResetAnomalyModel(userId)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	_ = c.JSON(http.StatusOK, version)
	return nil
}
