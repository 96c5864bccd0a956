/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package config

import (
	"os"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
)

// GetCurrentNodeIdAndHost resolves the identity stamped on everything this
// node publishes: scored readings, anomaly events and reported metrics all
// carry the node so a fleet-wide consumer can tell plants apart. NodeId comes
// from configuration, the hostname from the OS.
func GetCurrentNodeIdAndHost(service interfaces.ApplicationService) (nodeId string, hostName string) {
	lc := service.LoggingClient()

	hostName, err := os.Hostname()
	if err != nil {
		lc.Warnf("Could not read the OS hostname: %v", err)
		hostName = ""
	}

	nodeId, settingErr := service.GetAppSetting("NodeId")
	if settingErr != nil || nodeId == "" {
		lc.Infof("NodeId not configured, falling back to the hostname %s", hostName)
		nodeId = hostName
	}

	return nodeId, hostName
}
