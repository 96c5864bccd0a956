package service

import (
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockAppServiceCreator is a mock implementation for the AppServiceCreator interface
type MockAppServiceCreator struct {
	mock.Mock
}

func (m *MockAppServiceCreator) NewAppServiceWithTargetType(
	serviceKey string,
	targetType interface{},
) (interfaces.ApplicationService, bool) {
	args := m.Called(serviceKey, targetType)
	var service interfaces.ApplicationService
	if args.Get(0) != nil {
		service = args.Get(0).(interfaces.ApplicationService)
	}
	return service, args.Bool(1)
}

func (m *MockAppServiceCreator) NewAppService(serviceKey string) (interfaces.ApplicationService, bool) {
	args := m.Called(serviceKey)
	var service interfaces.ApplicationService
	if args.Get(0) != nil {
		service = args.Get(0).(interfaces.ApplicationService)
	}
	return service, args.Bool(1)
}
