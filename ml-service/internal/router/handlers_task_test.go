package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"plantpulse/ml-service/pkg/dto/task"
	"plantpulse/ml-service/pkg/tasks"
)

func TestRouter_CreateTask(t *testing.T) {
	t.Run("CreateTask - Passed (defaults applied)", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("CreateTask", mock.Anything).Return(task.MaintenanceTask{
			ID:          7,
			EquipmentID: "CNC-7",
			Title:       "Inspect spindle bearing",
		}, nil)

		c, rec := modelTypeContext(http.MethodPost, "/api/v3/ml_management/task",
			`{"equipmentId": "CNC-7", "title": "Inspect spindle bearing"}`)
		c.Request().Header.Set(userIdHeader, "operator")

		httpErr := router.createTask(c)

		require.Nil(t, httpErr)
		require.Equal(t, http.StatusCreated, rec.Code)

		captured := mockedTaskStore.Calls[0].Arguments.Get(0).(task.MaintenanceTask)
		assert.Equal(t, task.PriorityMedium, captured.Priority)
		assert.Equal(t, task.StatusNotStarted, captured.Status)
		assert.Equal(t, "operator", captured.CreatedBy)
		assert.False(t, captured.AutoCreated)
		// a week out and MEDIUM lands on the schedule quadrant
		assert.Equal(t, task.QuadrantSchedule, captured.EisenhowerQuadrant)
		assert.Equal(t, 2, captured.OrderPriority)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), captured.DueDate, time.Minute)
	})

	t.Run("CreateTask - Passed (urgent high priority)", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("CreateTask", mock.Anything).Return(task.MaintenanceTask{ID: 8}, nil)

		due := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
		c, rec := modelTypeContext(http.MethodPost, "/api/v3/ml_management/task",
			`{"equipmentId": "MILL-2", "title": "Replace coolant pump", "priority": "HIGH", "dueDate": "`+due+`"}`)

		httpErr := router.createTask(c)

		require.Nil(t, httpErr)
		require.Equal(t, http.StatusCreated, rec.Code)

		captured := mockedTaskStore.Calls[0].Arguments.Get(0).(task.MaintenanceTask)
		assert.Equal(t, task.QuadrantDoFirst, captured.EisenhowerQuadrant)
		assert.Equal(t, 1, captured.OrderPriority)
		assert.Equal(t, task.UrgencyUrgent, captured.Urgency)
		assert.Equal(t, task.ImportanceImportant, captured.Importance)
	})

	t.Run("CreateTask - Failed (missing title)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodPost, "/api/v3/ml_management/task",
			`{"equipmentId": "CNC-7"}`)

		httpErr := router.createTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		mockedTaskStore.AssertNotCalled(t, "CreateTask")
	})

	t.Run("CreateTask - Failed (equipment id fails the pattern)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodPost, "/api/v3/ml_management/task",
			`{"equipmentId": "../etc/passwd", "title": "Sneaky"}`)

		httpErr := router.createTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		mockedTaskStore.AssertNotCalled(t, "CreateTask")
	})

	t.Run("CreateTask - Failed (invalid priority)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodPost, "/api/v3/ml_management/task",
			`{"equipmentId": "CNC-7", "title": "Inspect", "priority": "URGENT"}`)

		httpErr := router.createTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Contains(t, httpErr.Message, "Invalid priority URGENT")
	})

	t.Run("CreateTask - Failed (store error)", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("CreateTask", mock.Anything).
			Return(task.MaintenanceTask{}, errors.New("postgres down"))
		c, _ := modelTypeContext(http.MethodPost, "/api/v3/ml_management/task",
			`{"equipmentId": "CNC-7", "title": "Inspect spindle bearing"}`)

		httpErr := router.createTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	})
}

func TestRouter_GetTasks(t *testing.T) {
	t.Run("GetTasks - Passed (filters forwarded)", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("GetTasks", tasks.TaskFilter{
			EquipmentID: "CNC-7",
			Status:      task.StatusNotStarted,
			AutoOnly:    true,
			Limit:       10,
		}).Return([]task.MaintenanceTask{
			{ID: 1, EquipmentID: "CNC-7", Title: "Inspect spindle bearing"},
		}, nil)

		c, rec := modelTypeContext(http.MethodGet,
			"/api/v3/ml_management/task?equipmentId=CNC-7&status=NOT_STARTED&autoOnly=true&limit=10", "")

		httpErr := router.getTasks(c)

		require.Nil(t, httpErr)
		require.Equal(t, http.StatusOK, rec.Code)
		var taskList []task.MaintenanceTask
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &taskList))
		require.Len(t, taskList, 1)
		assert.Equal(t, "CNC-7", taskList[0].EquipmentID)
	})

	t.Run("GetTasks - Failed (invalid autoOnly)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodGet, "/api/v3/ml_management/task?autoOnly=maybe", "")

		httpErr := router.getTasks(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("GetTasks - Failed (invalid limit)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodGet, "/api/v3/ml_management/task?limit=-1", "")

		httpErr := router.getTasks(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("GetTasks - Failed (store error)", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("GetTasks", mock.Anything).Return(nil, errors.New("postgres down"))
		c, _ := modelTypeContext(http.MethodGet, "/api/v3/ml_management/task", "")

		httpErr := router.getTasks(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	})
}

func TestRouter_GetTask(t *testing.T) {
	t.Run("GetTask - Passed", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("GetTask", int64(7)).Return(task.MaintenanceTask{
			ID:          7,
			EquipmentID: "CNC-7",
			Title:       "Inspect spindle bearing",
		}, nil)
		c, rec := modelTypeContext(http.MethodGet, "/api/v3/ml_management/task/7", "", "id", "7")

		httpErr := router.getTask(c)

		require.Nil(t, httpErr)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Inspect spindle bearing")
	})

	t.Run("GetTask - Failed (not a number)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodGet, "/api/v3/ml_management/task/seven", "", "id", "seven")

		httpErr := router.getTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("GetTask - Failed (not found)", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("GetTask", int64(404)).
			Return(task.MaintenanceTask{}, gorm.ErrRecordNotFound)
		c, _ := modelTypeContext(http.MethodGet, "/api/v3/ml_management/task/404", "", "id", "404")

		httpErr := router.getTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
		assert.Contains(t, httpErr.Message, "Task 404 not found")
	})
}

func TestRouter_UpdateTask(t *testing.T) {
	t.Run("UpdateTask - Passed (completing stamps the time)", func(t *testing.T) {
		router := buildRouter()
		completedAt := time.Now().UTC()
		mockedTaskStore.On("UpdateTask", int64(7), mock.Anything).Return(task.MaintenanceTask{
			ID:          7,
			Status:      task.StatusDone,
			CompletedAt: &completedAt,
		}, nil)
		c, rec := modelTypeContext(http.MethodPatch, "/api/v3/ml_management/task/7",
			`{"status": "DONE"}`, "id", "7")

		httpErr := router.updateTask(c)

		require.Nil(t, httpErr)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), task.StatusDone)
		assert.Contains(t, rec.Body.String(), "completedAt")

		captured := mockedTaskStore.Calls[0].Arguments.Get(1).(task.UpdateTaskRequest)
		require.NotNil(t, captured.Status)
		assert.Equal(t, task.StatusDone, *captured.Status)
	})

	t.Run("UpdateTask - Failed (nothing to update)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodPatch, "/api/v3/ml_management/task/7", `{}`, "id", "7")

		httpErr := router.updateTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Contains(t, httpErr.Message, "Nothing to update")
	})

	t.Run("UpdateTask - Failed (invalid status)", func(t *testing.T) {
		router := buildRouter()
		c, _ := modelTypeContext(http.MethodPatch, "/api/v3/ml_management/task/7",
			`{"status": "CANCELLED"}`, "id", "7")

		httpErr := router.updateTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Contains(t, httpErr.Message, "Invalid status CANCELLED")
	})

	t.Run("UpdateTask - Failed (not found)", func(t *testing.T) {
		router := buildRouter()
		mockedTaskStore.On("UpdateTask", int64(404), mock.Anything).
			Return(task.MaintenanceTask{}, gorm.ErrRecordNotFound)
		c, _ := modelTypeContext(http.MethodPatch, "/api/v3/ml_management/task/404",
			`{"status": "DONE"}`, "id", "404")

		httpErr := router.updateTask(c)

		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}
