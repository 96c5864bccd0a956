package registry

import (
	"github.com/stretchr/testify/mock"

	pulseErrors "plantpulse/common/errors"
	mlregistry "plantpulse/ml-service/pkg/registry"
	"plantpulse/ml-service/pkg/dto/ml"
)

// MockRegistryInterface is a mock implementation for the RegistryInterface interface
type MockRegistryInterface struct {
	mock.Mock
}

func (m *MockRegistryInterface) Register(request mlregistry.RegisterRequest) (ml.ModelVersion, pulseErrors.PulseError) {
	args := m.Called(request)
	var res ml.ModelVersion
	if args.Get(0) != nil {
		res = args.Get(0).(ml.ModelVersion)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockRegistryInterface) Promote(modelType string, version string) pulseErrors.PulseError {
	args := m.Called(modelType, version)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockRegistryInterface) Rollback(modelType string, toVersion string) (string, pulseErrors.PulseError) {
	args := m.Called(modelType, toVersion)
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return args.String(0), err
}

func (m *MockRegistryInterface) GetActive(modelType string) (*mlregistry.LoadedModel, pulseErrors.PulseError) {
	args := m.Called(modelType)
	var res *mlregistry.LoadedModel
	if args.Get(0) != nil {
		res = args.Get(0).(*mlregistry.LoadedModel)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockRegistryInterface) GetForABTest(modelType string) (*mlregistry.LoadedModel, pulseErrors.PulseError) {
	args := m.Called(modelType)
	var res *mlregistry.LoadedModel
	if args.Get(0) != nil {
		res = args.Get(0).(*mlregistry.LoadedModel)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}

func (m *MockRegistryInterface) SetABTraffic(modelType string, allocations map[string]float64) pulseErrors.PulseError {
	args := m.Called(modelType, allocations)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockRegistryInterface) Delete(modelType string, version string, force bool) pulseErrors.PulseError {
	args := m.Called(modelType, version, force)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockRegistryInterface) Deprecate(modelType string, version string) pulseErrors.PulseError {
	args := m.Called(modelType, version)
	var err pulseErrors.PulseError
	if args.Get(0) != nil {
		err = args.Get(0).(pulseErrors.PulseError)
	}
	return err
}

func (m *MockRegistryInterface) List(modelType string) (ml.RegistrySummary, pulseErrors.PulseError) {
	args := m.Called(modelType)
	var res ml.RegistrySummary
	if args.Get(0) != nil {
		res = args.Get(0).(ml.RegistrySummary)
	}
	var err pulseErrors.PulseError
	if args.Get(1) != nil {
		err = args.Get(1).(pulseErrors.PulseError)
	}
	return res, err
}
