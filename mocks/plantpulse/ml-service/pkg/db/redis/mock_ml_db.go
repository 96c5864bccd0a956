package redis

import (
	"github.com/go-redsync/redsync/v4"
	"github.com/stretchr/testify/mock"

	"plantpulse/common/db"
	pulseErrors "plantpulse/common/errors"
	redisdb "plantpulse/ml-service/pkg/db/redis"
	"plantpulse/ml-service/pkg/dto/ml"
)

// MockMLDbInterface is a mock implementation for the MLDbInterface interface
type MockMLDbInterface struct {
	mock.Mock
}

func (m *MockMLDbInterface) GetDbClient(dbConfig *db.DatabaseConfig) redisdb.MLDbInterface {
	args := m.Called(dbConfig)
	var res redisdb.MLDbInterface
	if args.Get(0) != nil {
		res = args.Get(0).(redisdb.MLDbInterface)
	}
	return res
}

func (m *MockMLDbInterface) GetRegistryIndex(modelType string) (ml.RegistryIndex, pulseErrors.PulseError) {
	args := m.Called(modelType)
	var res ml.RegistryIndex
	if args.Get(0) != nil {
		res = args.Get(0).(ml.RegistryIndex)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockMLDbInterface) SaveRegistryIndex(index ml.RegistryIndex) pulseErrors.PulseError {
	args := m.Called(index)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockMLDbInterface) DeleteRegistryIndex(modelType string) pulseErrors.PulseError {
	args := m.Called(modelType)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockMLDbInterface) AddTrainingJob(job ml.TrainingJob) (string, pulseErrors.PulseError) {
	args := m.Called(job)
	var res string
	if args.Get(0) != nil {
		res = args.Get(0).(string)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockMLDbInterface) UpdateTrainingJob(job ml.TrainingJob) pulseErrors.PulseError {
	args := m.Called(job)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockMLDbInterface) GetTrainingJob(name string) (ml.TrainingJob, pulseErrors.PulseError) {
	args := m.Called(name)
	var res ml.TrainingJob
	if args.Get(0) != nil {
		res = args.Get(0).(ml.TrainingJob)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockMLDbInterface) GetTrainingJobs() ([]ml.TrainingJob, pulseErrors.PulseError) {
	args := m.Called()
	var res []ml.TrainingJob
	if args.Get(0) != nil {
		res = args.Get(0).([]ml.TrainingJob)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockMLDbInterface) IncrMetricCounterBy(key string, value int64) (int64, pulseErrors.PulseError) {
	args := m.Called(key, value)
	var res int64
	if args.Get(0) != nil {
		res = args.Get(0).(int64)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockMLDbInterface) GetMetricCounter(key string) (int64, pulseErrors.PulseError) {
	args := m.Called(key)
	var res int64
	if args.Get(0) != nil {
		res = args.Get(0).(int64)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockMLDbInterface) SetMetricCounter(key string, value int64) pulseErrors.PulseError {
	args := m.Called(key, value)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockMLDbInterface) AcquireRedisLock(lockName string) (*redsync.Mutex, pulseErrors.PulseError) {
	args := m.Called(lockName)
	var res *redsync.Mutex
	if args.Get(0) != nil {
		res = args.Get(0).(*redsync.Mutex)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}
