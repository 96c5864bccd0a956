package config

import (
	"testing"

	"plantpulse/mocks/plantpulse/common/infrastructure/interfaces/utils"
)

func TestBuildMQTTSecretConfig(t *testing.T) {
	pulseMockUtils := utils.NewApplicationServiceMock(nil)
	pulseMockUtils.InitMQTTSettings()
	mqttConfig, err := BuildMQTTSecretConfig(pulseMockUtils.AppService, "events", "clientId001")

	if err != nil {
		t.Errorf("BuildMQTTSecretConfig failed, err:%s", err.Error())
	}

	if mqttConfig.Topic != "plantpulse/events" {
		t.Errorf("got %s, expected plantpulse/events", mqttConfig.Topic)
	}
}
