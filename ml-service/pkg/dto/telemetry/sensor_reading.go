/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package telemetry

// SensorReading is one telemetry sample for a machine. Humidity is a pointer
// since quite a few sensor models never report it and absent is not the same
// as zero for the normalizer.
type SensorReading struct {
	MachineID   string   `json:"machineId"           codec:"machineId"           validate:"required,max=200,matchRegex=^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$"`
	Timestamp   int64    `json:"timestamp"           codec:"timestamp"` // epoch millis
	Vibration   float64  `json:"vibration"           codec:"vibration"`
	Temperature float64  `json:"temperature"         codec:"temperature"`
	Humidity    *float64 `json:"humidity,omitempty"  codec:"humidity,omitempty"`
}

func (r SensorReading) HumidityOrZero() float64 {
	if r.Humidity == nil {
		return 0
	}
	return *r.Humidity
}
