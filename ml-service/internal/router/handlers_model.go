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
	"strconv"

	"github.com/labstack/echo/v4"

	"plantpulse/ml-service/pkg/dto/ml"
)

func (r *Router) getRegistrySummary(c echo.Context) *echo.HTTPError {
	modelType := c.Param("modelType")

	summary, pulseErr := r.modelRegistry.List(modelType)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	_ = c.JSON(http.StatusOK, summary)
	return nil
}

func (r *Router) getActiveModel(c echo.Context) *echo.HTTPError {
	modelType := c.Param("modelType")

	loaded, pulseErr := r.modelRegistry.GetActive(modelType)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}
	if loaded == nil {
		return echo.NewHTTPError(
			http.StatusNotFound,
			"No ACTIVE model version for model type "+modelType,
		)
	}

	_ = c.JSON(http.StatusOK, loaded.Version)
	return nil
}

func (r *Router) promoteModelVersion(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()
	modelType := c.Param("modelType")
	version := c.Param("version")
	lc.Infof("Request to promote %s model version %s", modelType, version)

	if pulseErr := r.modelRegistry.Promote(modelType, version); pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	lc.Infof("Promoted %s model version %s to ACTIVE", modelType, version)
	_ = c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Model version %s promoted to ACTIVE", version),
	})
	return nil
}

func (r *Router) rollbackModel(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()
	modelType := c.Param("modelType")
	toVersion := c.QueryParam("toVersion")
	lc.Infof("Request to roll back the %s model", modelType)

	activeVersion, pulseErr := r.modelRegistry.Rollback(modelType, toVersion)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	lc.Infof("Rolled the %s model back to version %s", modelType, activeVersion)
	_ = c.JSON(http.StatusOK, map[string]string{"activeVersion": activeVersion})
	return nil
}

func (r *Router) setABTraffic(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()
	modelType := c.Param("modelType")

	var allocations map[string]float64
	if err := json.NewDecoder(c.Request().Body).Decode(&allocations); err != nil {
		lc.Errorf("Failed to decode request body into a traffic allocation map %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Error parsing request body")
	}
	if len(allocations) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Traffic allocation map should not be empty")
	}

	if pulseErr := r.modelRegistry.SetABTraffic(modelType, allocations); pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	lc.Infof("Updated the A/B traffic allocation for %s across %d versions", modelType, len(allocations))
	_ = c.JSON(http.StatusOK, map[string]string{"message": "A/B traffic allocation updated"})
	return nil
}

func (r *Router) deleteModelVersion(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()
	modelType := c.Param("modelType")
	version := c.Param("version")

	force := false
	if forceStr := c.QueryParam("force"); forceStr != "" {
		parsed, err := strconv.ParseBool(forceStr)
		if err != nil {
			return echo.NewHTTPError(
				http.StatusBadRequest,
				"invalid query param 'force' value, must be 'true' or 'false'",
			)
		}
		force = parsed
	}

	if pulseErr := r.modelRegistry.Delete(modelType, version, force); pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	lc.Infof("Deleted %s model version %s", modelType, version)
	_ = c.NoContent(http.StatusNoContent)
	return nil
}

func (r *Router) deprecateModelVersion(c echo.Context) *echo.HTTPError {
	modelType := c.Param("modelType")
	version := c.Param("version")

	if pulseErr := r.modelRegistry.Deprecate(modelType, version); pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}

	_ = c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Model version %s deprecated", version),
	})
	return nil
}

func (r *Router) predictMTTF(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()

	var profile map[string]float64
	if err := json.NewDecoder(c.Request().Body).Decode(&profile); err != nil {
		lc.Errorf("Failed to decode request body into an equipment profile %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Error parsing request body")
	}

	loaded, pulseErr := r.modelRegistry.GetActive(ml.ModelTypePredictive)
	if pulseErr != nil {
		return pulseErr.ConvertToHTTPError()
	}
	if loaded == nil || loaded.Forest == nil {
		return echo.NewHTTPError(
			http.StatusNotFound,
			"No ACTIVE prediction model, train and promote one first",
		)
	}

	// feature order is the one captured at training time
	vector := make([]float64, 0, len(loaded.Forest.FeatureNames))
	for _, name := range loaded.Forest.FeatureNames {
		value, ok := profile[name]
		if !ok {
			return echo.NewHTTPError(
				http.StatusBadRequest,
				fmt.Sprintf("Missing feature %q in the equipment profile", name),
			)
		}
		vector = append(vector, value)
	}

	prediction, err := loaded.Forest.PredictMTTF(vector)
	if err != nil {
		lc.Errorf("MTTF prediction with model version %s failed: %v", loaded.Version.Version, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Prediction failed")
	}

	_ = c.JSON(http.StatusOK, prediction)
	return nil
}
