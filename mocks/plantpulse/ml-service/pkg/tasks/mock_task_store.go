package tasks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"plantpulse/ml-service/pkg/dto/task"
	mltasks "plantpulse/ml-service/pkg/tasks"
)

// MockTaskStore is a mock implementation for the TaskStoreInterface interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) CreateTask(newTask task.MaintenanceTask) (task.MaintenanceTask, error) {
	args := m.Called(newTask)
	var res task.MaintenanceTask
	if args.Get(0) != nil {
		res = args.Get(0).(task.MaintenanceTask)
	}
	return res, args.Error(1)
}

func (m *MockTaskStore) GetTask(id int64) (task.MaintenanceTask, error) {
	args := m.Called(id)
	var res task.MaintenanceTask
	if args.Get(0) != nil {
		res = args.Get(0).(task.MaintenanceTask)
	}
	return res, args.Error(1)
}

func (m *MockTaskStore) GetTasks(filter mltasks.TaskFilter) ([]task.MaintenanceTask, error) {
	args := m.Called(filter)
	var res []task.MaintenanceTask
	if args.Get(0) != nil {
		res = args.Get(0).([]task.MaintenanceTask)
	}
	return res, args.Error(1)
}

func (m *MockTaskStore) UpdateTask(id int64, update task.UpdateTaskRequest) (task.MaintenanceTask, error) {
	args := m.Called(id, update)
	var res task.MaintenanceTask
	if args.Get(0) != nil {
		res = args.Get(0).(task.MaintenanceTask)
	}
	return res, args.Error(1)
}

func (m *MockTaskStore) LatestTaskFor(equipmentID string, since time.Time) (*task.MaintenanceTask, error) {
	args := m.Called(equipmentID, since)
	var res *task.MaintenanceTask
	if args.Get(0) != nil {
		res = args.Get(0).(*task.MaintenanceTask)
	}
	return res, args.Error(1)
}
