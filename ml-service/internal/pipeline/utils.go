/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"plantpulse/common/dto"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

const (
	vibrationThreshold   = 75.0
	temperatureThreshold = 70.0
	rawScoreThreshold    = -0.5
)

func buildCorrelationId(modelType string, machineID string) string {
	return modelType + "_" + strings.ReplaceAll(machineID, " ", "")
}

// readingCorrelationId is unique per scored reading so a replayed message maps
// onto the same task while a later episode gets a fresh one
func readingCorrelationId(modelType string, machineID string, timestamp int64) string {
	return buildCorrelationId(modelType, machineID) + "_" + strconv.FormatInt(timestamp, 10)
}

// buildEventStats derives the open/closed event state for one scored reading.
// Severity follows the live status: ANOMALY raises a CRITICAL event, WARNING a
// MAJOR one, NORMAL closes whatever is open.
func buildEventStats(reading telemetry.ScoredReading) EventStats {
	eventStats := EventStats{
		Thresholds:   make(map[string]interface{}),
		ActualValues: make(map[string]interface{}),
	}

	if reading.Vibration > vibrationThreshold {
		eventStats.RelatedMetrics = append(eventStats.RelatedMetrics, "vibration")
		eventStats.Thresholds["vibration"] = vibrationThreshold
		eventStats.ActualValues["vibration"] = reading.Vibration
		eventStats.EventMessage = fmt.Sprintf("High vibration: %.1f", reading.Vibration)
	}
	if reading.Temperature > temperatureThreshold {
		eventStats.RelatedMetrics = append(eventStats.RelatedMetrics, "temperature")
		eventStats.Thresholds["temperature"] = temperatureThreshold
		eventStats.ActualValues["temperature"] = reading.Temperature
		if eventStats.EventMessage == "" {
			eventStats.EventMessage = fmt.Sprintf("High temperature: %.1f°C", reading.Temperature)
		}
	}
	if reading.RawScore < rawScoreThreshold {
		eventStats.RelatedMetrics = append(eventStats.RelatedMetrics, "ai_score")
		eventStats.Thresholds["ai_score"] = rawScoreThreshold
		eventStats.ActualValues["ai_score"] = reading.RawScore
		if eventStats.EventMessage == "" {
			eventStats.EventMessage = fmt.Sprintf("Low AI score: %.3f", reading.RawScore)
		}
	}
	if eventStats.EventMessage == "" {
		eventStats.EventMessage = fmt.Sprintf("AI score: %.3f", reading.RawScore)
	}

	switch reading.Status {
	case telemetry.StatusAnomaly:
		eventStats.Open = true
		eventStats.LastSeverity = dto.SEVERITY_CRITICAL
	case telemetry.StatusWarning:
		eventStats.Open = true
		eventStats.LastSeverity = dto.SEVERITY_MAJOR
	}
	return eventStats
}
