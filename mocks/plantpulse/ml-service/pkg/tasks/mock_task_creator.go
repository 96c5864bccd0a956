package tasks

import (
	"github.com/stretchr/testify/mock"

	"plantpulse/ml-service/pkg/dto/task"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

// MockTaskCreator is a mock implementation for the TaskCreatorInterface interface
type MockTaskCreator struct {
	mock.Mock
}

func (m *MockTaskCreator) MaybeCreateTask(reading telemetry.ScoredReading) (*task.MaintenanceTask, error) {
	args := m.Called(reading)
	var res *task.MaintenanceTask
	if args.Get(0) != nil {
		res = args.Get(0).(*task.MaintenanceTask)
	}
	return res, args.Error(1)
}
