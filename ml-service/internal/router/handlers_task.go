/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"plantpulse/common/utils"
	"plantpulse/ml-service/pkg/dto/task"
	"plantpulse/ml-service/pkg/tasks"
)

// manual tasks default to a one-week due window when none is given
const defaultDueDays = 7

func (r *Router) createTask(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()

	var request task.CreateTaskRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&request); err != nil {
		lc.Errorf("Failed to decode request body into CreateTaskRequest struct  %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Error parsing request body")
	}

	if err := r.validate.Struct(request); err != nil {
		lc.Errorf("Failed to validate the structure of the task request: %v", err)
		return echo.NewHTTPError(
			http.StatusBadRequest,
			"Failed to validate the structure of the task request: "+err.Error(),
		)
	}

	if request.Priority == "" {
		request.Priority = task.PriorityMedium
	}
	if !task.IsValidPriority(request.Priority) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid priority "+request.Priority)
	}
	if request.DueDate.IsZero() {
		request.DueDate = time.Now().Add(defaultDueDays * 24 * time.Hour)
	}

	userId, pulseErr := utils.GetUserIdFromHeader(c.Request(), r.service)
	if pulseErr != nil {
		lc.Errorf(pulseErr.Message())
	}

	daysUntilDue := time.Until(request.DueDate).Hours() / 24
	urgency, importance, orderPriority, quadrant := tasks.ClassifyMatrix(
		request.Priority,
		daysUntilDue,
		false,
	)

	newTask := task.MaintenanceTask{
		EquipmentID:        request.EquipmentID,
		Title:              request.Title,
		Description:        request.Description,
		DueDate:            request.DueDate,
		Priority:           request.Priority,
		Status:             task.StatusNotStarted,
		Urgency:            urgency,
		Importance:         importance,
		OrderPriority:      orderPriority,
		EisenhowerQuadrant: quadrant,
		AutoCreated:        false,
		AssignedTo:         request.AssignedTo,
		CreatedBy:          userId,
	}

	created, err := r.taskStore.CreateTask(newTask)
	if err != nil {
		lc.Errorf("Failed to create a task for equipment %s. Error: %v", request.EquipmentID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create the task")
	}

	lc.Infof("Created task %d for equipment %s in quadrant %s", created.ID, created.EquipmentID, created.EisenhowerQuadrant)
	_ = c.JSON(http.StatusCreated, created)
	return nil
}

func (r *Router) getTasks(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()

	filter := tasks.TaskFilter{
		EquipmentID: c.QueryParam("equipmentId"),
		Status:      c.QueryParam("status"),
		Priority:    c.QueryParam("priority"),
		Quadrant:    c.QueryParam("quadrant"),
	}
	if autoOnly := c.QueryParam("autoOnly"); autoOnly != "" {
		parsed, err := strconv.ParseBool(autoOnly)
		if err != nil {
			return echo.NewHTTPError(
				http.StatusBadRequest,
				"invalid query param 'autoOnly' value, must be 'true' or 'false'",
			)
		}
		filter.AutoOnly = parsed
	}
	if limit := c.QueryParam("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid query param 'limit' value")
		}
		filter.Limit = parsed
	}

	taskList, err := r.taskStore.GetTasks(filter)
	if err != nil {
		lc.Errorf("Failed to query tasks. Error: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to query tasks")
	}

	_ = c.JSON(http.StatusOK, taskList)
	return nil
}

func (r *Router) getTask(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id "+c.Param("id"))
	}

	found, err := r.taskStore.GetTask(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Task %d not found", id))
	}
	if err != nil {
		lc.Errorf("Failed to fetch task %d. Error: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch the task")
	}

	_ = c.JSON(http.StatusOK, found)
	return nil
}

func (r *Router) updateTask(c echo.Context) *echo.HTTPError {
	lc := r.service.LoggingClient()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id "+c.Param("id"))
	}

	var update task.UpdateTaskRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
		lc.Errorf("Failed to decode request body into UpdateTaskRequest struct  %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Error parsing request body")
	}
	if update.Status == nil && update.AssignedTo == nil && update.Priority == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update, provide status, assignedTo or priority")
	}
	if update.Status != nil && !task.IsValidStatus(*update.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status "+*update.Status)
	}
	if update.Priority != nil && !task.IsValidPriority(*update.Priority) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid priority "+*update.Priority)
	}

	updated, err := r.taskStore.UpdateTask(id, update)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Task %d not found", id))
	}
	if err != nil {
		lc.Errorf("Failed to update task %d. Error: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update the task")
	}

	lc.Infof("Updated task %d, status %s", updated.ID, updated.Status)
	_ = c.JSON(http.StatusOK, updated)
	return nil
}
