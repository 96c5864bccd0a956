/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package features

import (
	"math"

	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

// Classify derives a bounded health assessment from the raw sensor values and
// the canonical [-1,1] anomaly score. Pure function, no hidden state: the same
// inputs always produce the same assessment.
func Classify(vibration, temperature, anomalyScore float64) ml.HealthAssessment {
	healthScore := 100.0

	switch {
	case vibration > 95:
		healthScore -= 40
	case vibration > 85:
		healthScore -= 20
	case vibration > 75:
		healthScore -= 10
	}

	switch {
	case temperature > 80:
		healthScore -= 30
	case temperature > 70:
		healthScore -= 15
	case temperature > 65:
		healthScore -= 5
	}

	// The model signal carries the largest penalty of any single factor
	switch {
	case anomalyScore < -0.5:
		healthScore -= 35
	case anomalyScore < 0.0:
		healthScore -= 15
	case anomalyScore < 0.1:
		healthScore -= 5
	}

	healthScore = math.Max(0, math.Min(100, healthScore))
	days := daysUntilMaintenance(healthScore)

	return ml.HealthAssessment{
		Score:                roundTo1(healthScore),
		Status:               healthStatusFor(healthScore),
		DaysUntilMaintenance: roundTo1(days),
		MaintenanceUrgency:   urgencyFor(days),
	}
}

func healthStatusFor(healthScore float64) string {
	switch {
	case healthScore >= 80:
		return ml.HealthExcellent
	case healthScore >= 60:
		return ml.HealthGood
	case healthScore >= 40:
		return ml.HealthFair
	case healthScore >= 20:
		return ml.HealthPoor
	default:
		return ml.HealthCritical
	}
}

// daysUntilMaintenance interpolates linearly inside each health band, anchored
// at 80->14d, 60->7d, 40->3d, 20->1d and 0->0d
func daysUntilMaintenance(healthScore float64) float64 {
	switch {
	case healthScore >= 80:
		return 14 + (healthScore-80)*0.5
	case healthScore >= 60:
		return 7 + (healthScore-60)*0.35
	case healthScore >= 40:
		return 3 + (healthScore-40)*0.2
	case healthScore >= 20:
		return 1 + (healthScore-20)*0.1
	default:
		return 0
	}
}

func urgencyFor(days float64) string {
	switch {
	case days < 1:
		return ml.UrgencyImmediate
	case days < 3:
		return ml.UrgencySoon
	default:
		return ml.UrgencyScheduled
	}
}

// DeriveStatus maps a prediction onto the live machine status shown on the
// dashboard and gating task auto-creation
func DeriveStatus(prediction ml.AnomalyPrediction) string {
	switch {
	case prediction.IsAnomaly || prediction.RawScore < -0.5:
		return telemetry.StatusAnomaly
	case prediction.RawScore < 0.1 || ml.RiskAtLeast(prediction.RiskLevel, ml.RiskMedium):
		return telemetry.StatusWarning
	default:
		return telemetry.StatusNormal
	}
}

func roundTo1(value float64) float64 {
	return math.Round(value*10) / 10
}
