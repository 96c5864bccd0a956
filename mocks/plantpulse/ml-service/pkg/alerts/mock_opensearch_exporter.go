package alerts

import (
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockOpenSearchExporter is a mock implementation for the OpenSearchExporterInterface interface
type MockOpenSearchExporter struct {
	mock.Mock
}

func (m *MockOpenSearchExporter) SaveEventToOpenSearch(ctx interfaces.AppFunctionContext, data interface{}) (bool, interface{}) {
	args := m.Called(ctx, data)
	return args.Bool(0), args.Get(1)
}
