/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package pipeline

import (
	"strconv"
	"time"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"

	"plantpulse/ml-service/pkg/tasks"
)

type ScoringConfig struct {
	TelemetryTopics   []string
	PublishEventTopic string
	RemoteWriteURL    string
	ABTestEnabled     bool
	LocalModelBaseDir string
	TaskDedupWindow   time.Duration
}

func NewScoringConfig() *ScoringConfig {
	scoringConfig := new(ScoringConfig)
	return scoringConfig
}

func (cfg *ScoringConfig) LoadConfigurations(service interfaces.ApplicationService) {

	lc := service.LoggingClient()

	topics, err := service.GetAppSettingStrings("TelemetryTopics")
	if err != nil || len(topics) == 0 {
		lc.Error("Error reading the configuration for TelemetryTopics, defaulting to factory/plc/data")
		topics = []string{"factory/plc/data"}
	}
	cfg.TelemetryTopics = topics

	publishEventTopic, err := service.GetAppSetting("PublishEventTopic")
	if err != nil {
		lc.Error("Error reading the configuration for PublishEventTopic: ", err.Error())
	} else {
		cfg.PublishEventTopic = publishEventTopic
	}

	// Remote write is optional, scoring runs fine without a long-term metrics store
	remoteWriteURL, err := service.GetAppSetting("RemoteWriteURL")
	if err == nil {
		cfg.RemoteWriteURL = remoteWriteURL
	}

	abTestEnabled, err := service.GetAppSetting("ABTestEnabled")
	if err == nil {
		cfg.ABTestEnabled, _ = strconv.ParseBool(abTestEnabled)
	}

	modelBaseDir, err := service.GetAppSetting("LocalModelDir")
	if err != nil {
		lc.Error("Error reading the configuration for LocalModelDir: ", err.Error())
	} else {
		cfg.LocalModelBaseDir = modelBaseDir
	}

	cfg.TaskDedupWindow = tasks.DefaultDedupWindow
	dedupWindow, err := service.GetAppSetting("TaskDedupWindow")
	if err == nil {
		parsed, parseErr := time.ParseDuration(dedupWindow)
		if parseErr != nil {
			lc.Error("Error parsing the configuration for TaskDedupWindow: ", parseErr.Error())
		} else {
			cfg.TaskDedupWindow = parsed
		}
	}

}
