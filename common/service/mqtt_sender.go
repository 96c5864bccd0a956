/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	gometrics "github.com/rcrowley/go-metrics"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/secure"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/transforms"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/util"
)

const (
	EventMqttExportSizeName   = "EventMqttExportSize"
	EventMqttExportErrorsName = "EventMqttExportErrors"
	metricsReservoirSize      = 1028
	correlationHeader         = "X-Correlation-ID"

	// max concurrent MQTT publish commands
	maxPublishConcurrency = 5
)

// MqttSender publishes anomaly events to the edge broker using credentials
// pulled from the secret store. Secrets rotated at runtime force a client
// rebuild on the next send.
type MqttSender interface {
	MQTTSend(ctx interfaces.AppFunctionContext, data interface{}) (bool, interface{})
	InitializeMQTTClient(ctx interfaces.AppFunctionContext) error
	GetClient() MQTT.Client
	GetMQTTSecretConfig() transforms.MQTTSecretConfig
	SetPersistOnError(persistOnError bool)
	GetPersistOnError() bool
}

type MQTTEventSender struct {
	lock                 sync.Mutex
	Client               MQTT.Client
	mqttConfig           transforms.MQTTSecretConfig
	PersistOnError       bool
	opts                 *MQTT.ClientOptions
	secretsLastRetrieved time.Time
	sizeMetric           gometrics.Histogram
	errorMetric          gometrics.Counter
	// bounds concurrent publishes toward the broker
	sem chan bool
}

func NewMQTTSecretSender(mqttConfig transforms.MQTTSecretConfig, persistOnError bool) MqttSender {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(mqttConfig.BrokerAddress)
	opts.SetClientID(mqttConfig.ClientId)
	opts.SetAutoReconnect(mqttConfig.AutoReconnect)

	// avoid casing issues
	mqttConfig.AuthMode = strings.ToLower(mqttConfig.AuthMode)

	return &MQTTEventSender{
		Client:         nil,
		mqttConfig:     mqttConfig,
		PersistOnError: persistOnError,
		opts:           opts,
		sem:            make(chan bool, maxPublishConcurrency),
	}
}

// InitializeMQTTClient builds the paho client through the secure factory. Safe
// to call from concurrent pipeline executions; a second caller either waits out
// or skips an initialization already in flight.
func (sender *MQTTEventSender) InitializeMQTTClient(ctx interfaces.AppFunctionContext) error {
	if !sender.lock.TryLock() {
		return errors.New("earlier connection to mqtt broker in progress")
	}
	defer sender.lock.Unlock()

	// another execution may have finished the initialization while this one waited
	secretProvider := ctx.SecretProvider()
	if sender.Client != nil && !sender.secretsLastRetrieved.Before(secretProvider.SecretsLastUpdated()) {
		return nil
	}

	ctx.LoggingClient().Info("Initializing MQTT Client")

	config := sender.mqttConfig
	mqttFactory := secure.NewMqttFactory(ctx.SecretProvider(), ctx.LoggingClient(), config.AuthMode, config.SecretName, config.SkipCertVerify)

	if len(config.KeepAlive) > 0 {
		keepAlive, err := time.ParseDuration(config.KeepAlive)
		if err != nil {
			return fmt.Errorf("in pipeline '%s', unable to parse KeepAlive value of '%s': %s", ctx.PipelineId(), config.KeepAlive, err.Error())
		}
		sender.opts.SetKeepAlive(keepAlive)
	}

	if len(config.ConnectTimeout) > 0 {
		timeout, err := time.ParseDuration(config.ConnectTimeout)
		if err != nil {
			return fmt.Errorf("in pipeline '%s', unable to parse ConnectTimeout value of '%s': %s", ctx.PipelineId(), config.ConnectTimeout, err.Error())
		}
		sender.opts.SetConnectTimeout(timeout)
	}

	if config.Will.Enabled {
		sender.opts.SetWill(config.Will.Topic, config.Will.Payload, config.Will.Qos, config.Will.Retained)
		ctx.LoggingClient().Infof("Last Will options set for event export: %+v", config.Will)
	}

	client, err := mqttFactory.Create(sender.opts)
	if err != nil {
		return fmt.Errorf("in pipeline '%s', unable to create MQTT Client: %s", ctx.PipelineId(), err.Error())
	}

	sender.Client = client
	sender.secretsLastRetrieved = time.Now()

	return nil
}

func (sender *MQTTEventSender) connectToBroker(ctx interfaces.AppFunctionContext, exportData []byte) error {
	sender.sem <- true
	defer func() { <-sender.sem }()

	if !sender.lock.TryLock() {
		sender.setRetryData(ctx, exportData)
		return fmt.Errorf("earlier connection to mqtt broker in progress, %s", sender.retryOutcome())
	}
	defer sender.lock.Unlock()

	// another execution may have connected while this one waited for the lock
	if sender.Client.IsConnected() && sender.Client.IsConnectionOpen() {
		return nil
	}

	ctx.LoggingClient().Info("Connecting to mqtt server for export")
	if token := sender.Client.Connect(); token.Wait() && token.Error() != nil {
		sender.setRetryData(ctx, exportData)
		return fmt.Errorf("in pipeline '%s', could not connect to mqtt server for export, %s. Error: %s", ctx.PipelineId(), sender.retryOutcome(), token.Error().Error())
	}
	ctx.LoggingClient().Infof("Connected to mqtt server for export in pipeline '%s'", ctx.PipelineId())
	return nil
}

// MQTTSend publishes the data from the previous pipeline function to the
// configured events topic. Placeholders in the topic are resolved against the
// function context before publishing.
func (sender *MQTTEventSender) MQTTSend(ctx interfaces.AppFunctionContext, data interface{}) (bool, interface{}) {
	if data == nil {
		return false, fmt.Errorf("function MQTTSend in pipeline '%s': No Data Received", ctx.PipelineId())
	}

	exportData, err := util.CoerceType(data)
	if err != nil {
		return false, err
	}

	// rebuild the client when it was never initialized or the secrets rotated underneath it
	if sender.Client == nil || sender.secretsLastRetrieved.Before(ctx.SecretProvider().SecretsLastUpdated()) {
		if err := sender.InitializeMQTTClient(ctx); err != nil {
			sender.setRetryData(ctx, exportData)
			return false, fmt.Errorf("error while initializing MQTT client: %s, %s", sender.retryOutcome(), err.Error())
		}
	}

	publishTopic, err := ctx.ApplyValues(sender.mqttConfig.Topic)
	if err != nil {
		return false, fmt.Errorf("in pipeline '%s', MQTT topic formatting failed: %s", ctx.PipelineId(), err.Error())
	}

	sender.ensureExportMetrics(ctx, publishTopic)

	if !sender.Client.IsConnected() {
		if err := sender.connectToBroker(ctx, exportData); err != nil {
			sender.errorMetric.Inc(1)
			return false, err
		}
	}

	sender.sem <- true
	defer func() { <-sender.sem }()

	if !sender.Client.IsConnectionOpen() {
		sender.errorMetric.Inc(1)
		sender.setRetryData(ctx, exportData)
		return false, fmt.Errorf("in pipeline '%s', connection to mqtt server for export not open, %s", ctx.PipelineId(), sender.retryOutcome())
	}

	token := sender.Client.Publish(publishTopic, sender.mqttConfig.QoS, sender.mqttConfig.Retain, exportData)
	token.Wait()
	if token.Error() != nil {
		sender.errorMetric.Inc(1)
		sender.setRetryData(ctx, exportData)
		return false, token.Error()
	}

	exportDataBytes := len(exportData)
	sender.sizeMetric.Update(int64(exportDataBytes))

	ctx.LoggingClient().Debugf("Sent %d bytes of data to MQTT Broker in pipeline '%s'", exportDataBytes, ctx.PipelineId())
	ctx.LoggingClient().Tracef("Data exported", "Transport", "MQTT", "pipeline", ctx.PipelineId(), correlationHeader, ctx.CorrelationID())

	return true, nil
}

// ensureExportMetrics lazily creates and registers the publish size and error
// metrics, tagged by broker address and topic so parallel senders stay apart.
func (sender *MQTTEventSender) ensureExportMetrics(ctx interfaces.AppFunctionContext, publishTopic string) {
	tagValue := fmt.Sprintf("%s/%s", sender.mqttConfig.BrokerAddress, publishTopic)
	tags := map[string]string{"address/topic": tagValue}
	lc := ctx.LoggingClient()

	register := func(fullName string, metric any) {
		metricsManager := ctx.MetricsManager()
		if metricsManager == nil {
			lc.Errorf("Unable to register metric %s. Collection will continue, but metric will not be reported: metrics manager not available", fullName)
			return
		}
		if err := metricsManager.Register(fullName, metric, tags); err != nil {
			lc.Errorf("Unable to register metric %s. Collection will continue, but metric will not be reported: %s", fullName, err.Error())
			return
		}
		lc.Infof("%s metric has been registered and will be reported (if enabled)", fullName)
	}

	if sender.errorMetric == nil {
		sender.errorMetric = gometrics.NewCounter()
		register(fmt.Sprintf("%s-%s", EventMqttExportErrorsName, tagValue), sender.errorMetric)
	}

	if sender.sizeMetric == nil {
		sender.sizeMetric = gometrics.NewHistogram(gometrics.NewUniformSample(metricsReservoirSize))
		register(fmt.Sprintf("%s-%s", EventMqttExportSizeName, tagValue), sender.sizeMetric)
	}
}

// retryOutcome names what happens to the in-flight payload when a send fails.
func (sender *MQTTEventSender) retryOutcome() string {
	if sender.PersistOnError {
		return "persisting event for later retry"
	}
	return "dropping event"
}

func (sender *MQTTEventSender) setRetryData(ctx interfaces.AppFunctionContext, exportData []byte) {
	if sender.PersistOnError {
		ctx.SetRetryData(exportData)
	}
}

func (sender *MQTTEventSender) GetClient() MQTT.Client {
	return sender.Client
}

func (sender *MQTTEventSender) GetPersistOnError() bool {
	return sender.PersistOnError
}

func (sender *MQTTEventSender) SetPersistOnError(persistOnError bool) {
	sender.PersistOnError = persistOnError
}

func (sender *MQTTEventSender) GetMQTTSecretConfig() transforms.MQTTSecretConfig {
	return sender.mqttConfig
}
