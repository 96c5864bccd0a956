/*******************************************************************************
* Contributors: BMC Software, Inc. - BMC Helix Edge
*
* (c) Copyright 2020-2025 BMC Software, Inc.
*******************************************************************************/

package config

import (
	"os"
	"strings"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/transforms"
	"github.com/lithammer/shortuuid/v3"
)

const (
	defaultTopicPrefix = "plantpulse"
)

// BuildMQTTSecretConfig assembles the broker connection settings for an MQTT
// export. Every setting falls back to the stack default so a bare deployment
// still connects to the edge broker.
func BuildMQTTSecretConfig(service interfaces.ApplicationService, topic string, clientId string) (transforms.MQTTSecretConfig, error) {
	lc := service.LoggingClient()

	scheme := appSettingOrDefault(service, "scheme", "tcp")
	mqttServer := appSettingOrDefault(service, "MqttServer", "edgex-mqtt-broker")
	mqttPort := appSettingOrDefault(service, "MqttPort", "1883")
	mqttAuthMode := appSettingOrDefault(service, "MqttAuthMode", "none")
	// mbconnection is the secret store path holding the broker credentials
	mqttSecretName := appSettingOrDefault(service, "MqttSecretName", "mbconnection")

	brokerAddress := scheme + "://" + mqttServer + ":" + mqttPort
	lc.Infof("MQTT broker for export is %s, auth mode %s", brokerAddress, mqttAuthMode)

	// prefix the topic the same way the subscribe side does
	mqttConfig := transforms.MQTTSecretConfig{
		BrokerAddress:  brokerAddress,
		ClientId:       clientId + "-" + shortuuid.New(),
		SecretName:     mqttSecretName,
		AutoReconnect:  true,
		KeepAlive:      "30s",
		ConnectTimeout: "60s",
		Topic:          topicWithBasePrefix(topic),
		QoS:            GetMQTTQoS(service),
		Retain:         false,
		SkipCertVerify: true,
		AuthMode:       mqttAuthMode,
	}
	return mqttConfig, nil
}

func appSettingOrDefault(service interfaces.ApplicationService, name string, fallback string) string {
	value, err := service.GetAppSetting(name)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

func topicWithBasePrefix(topic string) string {
	prefix := os.Getenv("MESSAGEBUS_BASETOPICPREFIX")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	if !strings.HasPrefix(topic, prefix) {
		return prefix + "/" + topic
	}
	return topic
}
