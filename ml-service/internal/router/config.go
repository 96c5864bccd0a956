/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package router

import (
	"strconv"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
)

const defaultMaxUploadSizeMb = 16

type ManagementConfig struct {
	LocalModelBaseDir string
	MaxUploadSizeMb   int64
}

func NewManagementConfig() *ManagementConfig {
	managementConfig := new(ManagementConfig)
	managementConfig.MaxUploadSizeMb = defaultMaxUploadSizeMb
	return managementConfig
}

func (cfg *ManagementConfig) LoadConfigurations(service interfaces.ApplicationService) {

	lc := service.LoggingClient()

	modelBaseDir, err := service.GetAppSetting("LocalModelDir")
	if err != nil {
		lc.Error("Error reading the configuration for LocalModelDir: ", err.Error())
	} else {
		cfg.LocalModelBaseDir = modelBaseDir
	}

	maxUploadSize, err := service.GetAppSetting("MaxUploadSizeMb")
	if err == nil {
		parsed, parseErr := strconv.ParseInt(maxUploadSize, 10, 64)
		if parseErr != nil || parsed <= 0 {
			lc.Error("Error parsing the configuration for MaxUploadSizeMb, keeping the default")
		} else {
			cfg.MaxUploadSizeMb = parsed
		}
	}
}
