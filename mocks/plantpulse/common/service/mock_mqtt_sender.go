package service

import (
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/transforms"
	"github.com/stretchr/testify/mock"
)

// MockMqttSender is a mock implementation for the MqttSender interface
type MockMqttSender struct {
	mock.Mock
}

func (m *MockMqttSender) MQTTSend(ctx interfaces.AppFunctionContext, data interface{}) (bool, interface{}) {
	args := m.Called(ctx, data)
	return args.Bool(0), args.Get(1)
}

func (m *MockMqttSender) InitializeMQTTClient(ctx interfaces.AppFunctionContext) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMqttSender) GetClient() MQTT.Client {
	args := m.Called()
	var client MQTT.Client
	if args.Get(0) != nil {
		client = args.Get(0).(MQTT.Client)
	}
	return client
}

func (m *MockMqttSender) GetMQTTSecretConfig() transforms.MQTTSecretConfig {
	args := m.Called()
	var config transforms.MQTTSecretConfig
	if args.Get(0) != nil {
		config = args.Get(0).(transforms.MQTTSecretConfig)
	}
	return config
}

func (m *MockMqttSender) SetPersistOnError(persistOnError bool) {
	m.Called(persistOnError)
}

func (m *MockMqttSender) GetPersistOnError() bool {
	args := m.Called()
	return args.Bool(0)
}
