/*******************************************************************************
* Contributors: BMC Software, Inc. - BMC Helix Edge
*
* (c) Copyright 2020-2025 BMC Software, Inc.
*******************************************************************************/

package config

import (
	"strconv"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
)

// GetPersistOnError reports whether a failed export should go through the
// store-and-forward retry loop instead of being dropped.
func GetPersistOnError(service interfaces.ApplicationService) bool {
	lc := service.LoggingClient()
	raw, err := service.GetAppSetting("PersistOnError")
	if err != nil {
		lc.Errorf("PersistOnError parameter not found in the config")
		return false
	}
	persistOnError, err := strconv.ParseBool(raw)
	if err != nil {
		lc.Errorf("Invalid value specified for PersistOnError in configuration: %s", err.Error())
		return false
	}
	return persistOnError
}

// GetMQTTQoS reads the export QoS level, treating anything unrecognized as 0.
func GetMQTTQoS(service interfaces.ApplicationService) byte {
	lc := service.LoggingClient()
	qoS, err := service.GetAppSetting("QoS")
	if err != nil {
		lc.Info("QoS not configured, defaulting to 0")
		return 0
	}
	switch qoS {
	case "1":
		return 1
	case "2":
		return 2
	case "0":
		return 0
	default:
		lc.Debugf("Unrecognized QoS value %s, defaulting to 0", qoS)
		return 0
	}
}
