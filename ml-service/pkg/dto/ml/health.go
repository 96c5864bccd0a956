/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ml

const (
	HealthExcellent = "EXCELLENT"
	HealthGood      = "GOOD"
	HealthFair      = "FAIR"
	HealthPoor      = "POOR"
	HealthCritical  = "CRITICAL"
)

const (
	UrgencyImmediate = "immediate"
	UrgencySoon      = "soon"
	UrgencyScheduled = "scheduled"
)

// HealthAssessment is the classifier output for one scored reading
type HealthAssessment struct {
	Score                float64 `json:"score"                codec:"score"` // 0..100, higher is healthier
	Status               string  `json:"status"               codec:"status"`
	DaysUntilMaintenance float64 `json:"daysUntilMaintenance" codec:"daysUntilMaintenance"`
	MaintenanceUrgency   string  `json:"maintenanceUrgency"   codec:"maintenanceUrgency"`
}
