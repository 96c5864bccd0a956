/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package pipeline

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/labstack/echo/v4"

	"plantpulse/ml-service/pkg/dto/ml"
)

const noLiveDataMsg = "No data available. Ensure the data ingestion pipeline is running."

// Router exposes the scoring service's read-only query surface plus the
// reinitialize hook the management service calls after a promotion.
type Router struct {
	service  interfaces.ApplicationService
	pipeline *ScoringPipeline
}

type RouterResponse struct {
	Status string
}

func NewRouter(svc interfaces.ApplicationService, pipeline *ScoringPipeline) *Router {
	return &Router{
		service:  svc,
		pipeline: pipeline,
	}
}

// GetLive serves the most recent scored reading, either for one machine or
// the newest across all machines.
func (r *Router) GetLive(c echo.Context) error {
	machineID := c.QueryParam("machineId")

	var reading interface{}
	var found bool
	if machineID != "" {
		reading, found = r.pipeline.live.Latest(machineID)
	} else {
		reading, found = r.pipeline.live.Newest()
	}
	if !found {
		return c.JSON(http.StatusNotFound, RouterResponse{Status: noLiveDataMsg})
	}
	return c.JSON(http.StatusOK, reading)
}

// GetLiveMachines lists the machines that reported within the live window
func (r *Router) GetLiveMachines(c echo.Context) error {
	return c.JSON(http.StatusOK, r.pipeline.live.Machines())
}

func (r *Router) GetHistory(c echo.Context) error {
	machineID := c.QueryParam("machineId")
	window, err := parseWindow(c.QueryParam("window"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, RouterResponse{Status: err.Error()})
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, RouterResponse{Status: err.Error()})
	}

	readings, err := r.pipeline.store.History(c.Request().Context(), machineID, window, limit)
	if err != nil {
		r.service.LoggingClient().Errorf("Error reading the scored history: %v", err)
		return c.JSON(http.StatusInternalServerError, RouterResponse{Status: "Error reading the scored history"})
	}
	return c.JSON(http.StatusOK, readings)
}

func (r *Router) GetStats(c echo.Context) error {
	machineID := c.QueryParam("machineId")
	window, err := parseWindow(c.QueryParam("window"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, RouterResponse{Status: err.Error()})
	}

	stats, err := r.pipeline.store.Stats(c.Request().Context(), machineID, window)
	if err != nil {
		r.service.LoggingClient().Errorf("Error aggregating machine statistics: %v", err)
		return c.JSON(http.StatusInternalServerError, RouterResponse{Status: "Error aggregating machine statistics"})
	}
	return c.JSON(http.StatusOK, stats)
}

func (r *Router) GetAlerts(c echo.Context) error {
	machineID := c.QueryParam("machineId")
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, RouterResponse{Status: err.Error()})
	}

	alerts, err := r.pipeline.store.Alerts(c.Request().Context(), machineID, limit)
	if err != nil {
		r.service.LoggingClient().Errorf("Error reading alerts: %v", err)
		return c.JSON(http.StatusInternalServerError, RouterResponse{Status: "Error reading alerts"})
	}
	return c.JSON(http.StatusOK, alerts)
}

// Healthz reports whether the service can reach its telemetry store
func (r *Router) Healthz(c echo.Context) error {
	if r.pipeline.store == nil {
		return c.JSON(http.StatusServiceUnavailable, RouterResponse{Status: "telemetry store not configured"})
	}
	if err := r.pipeline.store.Ping(c.Request().Context()); err != nil {
		r.service.LoggingClient().Errorf("Telemetry store ping failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, RouterResponse{Status: "telemetry store unreachable"})
	}
	return c.JSON(http.StatusOK, RouterResponse{Status: "ok"})
}

// Reinitialize drops the cached model snapshot and calibration so the next
// scoring pass reloads both. The management service calls this after a
// promote, rollback or reset.
func (r *Router) Reinitialize(c echo.Context) error {
	lc := r.service.LoggingClient()
	lc.Info("Reinitializing the scoring models from the registry")

	r.pipeline.models.Invalidate(ml.ModelTypeAnomalyDetection)
	r.pipeline.calibration.Invalidate()

	return c.JSON(http.StatusAccepted, RouterResponse{Status: "Success"})
}

func (r *Router) AddRoutes() {
	r.service.AddCustomRoute("/api/v3/ml_scoring/live", interfaces.Authenticated, r.GetLive, http.MethodGet)
	r.service.AddCustomRoute("/api/v3/ml_scoring/live/machines", interfaces.Authenticated, r.GetLiveMachines, http.MethodGet)
	r.service.AddCustomRoute("/api/v3/ml_scoring/history", interfaces.Authenticated, r.GetHistory, http.MethodGet)
	r.service.AddCustomRoute("/api/v3/ml_scoring/stats", interfaces.Authenticated, r.GetStats, http.MethodGet)
	r.service.AddCustomRoute("/api/v3/ml_scoring/alerts", interfaces.Authenticated, r.GetAlerts, http.MethodGet)
	r.service.AddCustomRoute("/api/v3/ml_scoring/healthz", interfaces.Authenticated, r.Healthz, http.MethodGet)
	r.service.AddCustomRoute("/api/v3/ml_scoring/reinitialize", interfaces.Authenticated, r.Reinitialize, http.MethodPost)
}

func parseWindow(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil || window < 0 {
		return 0, errors.New("Invalid window duration: " + raw)
	}
	return window, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("Invalid limit: " + raw)
	}
	return limit, nil
}
