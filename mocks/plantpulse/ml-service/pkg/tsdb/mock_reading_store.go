package tsdb

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"plantpulse/ml-service/pkg/dto/telemetry"
	"plantpulse/ml-service/pkg/features"
)

// MockReadingStore is a mock implementation for the ReadingStoreInterface interface
type MockReadingStore struct {
	mock.Mock
}

func (m *MockReadingStore) SaveScoredReading(ctx context.Context, reading telemetry.ScoredReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockReadingStore) History(ctx context.Context, machineID string, window time.Duration, limit int) ([]telemetry.ScoredReading, error) {
	args := m.Called(ctx, machineID, window, limit)
	var res []telemetry.ScoredReading
	if args.Get(0) != nil {
		res = args.Get(0).([]telemetry.ScoredReading)
	}
	return res, args.Error(1)
}

func (m *MockReadingStore) Stats(ctx context.Context, machineID string, window time.Duration) (telemetry.MachineStats, error) {
	args := m.Called(ctx, machineID, window)
	var res telemetry.MachineStats
	if args.Get(0) != nil {
		res = args.Get(0).(telemetry.MachineStats)
	}
	return res, args.Error(1)
}

func (m *MockReadingStore) Alerts(ctx context.Context, machineID string, limit int) ([]telemetry.Alert, error) {
	args := m.Called(ctx, machineID, limit)
	var res []telemetry.Alert
	if args.Get(0) != nil {
		res = args.Get(0).([]telemetry.Alert)
	}
	return res, args.Error(1)
}

func (m *MockReadingStore) RecentReadings(ctx context.Context, limit int) ([]telemetry.SensorReading, error) {
	args := m.Called(ctx, limit)
	var res []telemetry.SensorReading
	if args.Get(0) != nil {
		res = args.Get(0).([]telemetry.SensorReading)
	}
	return res, args.Error(1)
}

func (m *MockReadingStore) CalibrationSamples(ctx context.Context, window time.Duration) ([]features.CalibrationSample, error) {
	args := m.Called(ctx, window)
	var res []features.CalibrationSample
	if args.Get(0) != nil {
		res = args.Get(0).([]features.CalibrationSample)
	}
	return res, args.Error(1)
}

func (m *MockReadingStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReadingStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
