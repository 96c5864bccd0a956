/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package tasks

import (
	"plantpulse/ml-service/pkg/dto/task"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

// PriorityFor maps the live status and health score to a task priority and
// a due window in days. A confirmed anomaly or a badly degraded machine
// gets a HIGH/next-day task, everything else lands on MEDIUM with a window
// that widens as health improves.
func PriorityFor(status string, healthScore float64) (string, int) {
	switch {
	case status == telemetry.StatusAnomaly || healthScore < 40:
		return task.PriorityHigh, 1
	case healthScore < 60:
		return task.PriorityMedium, 3
	default:
		return task.PriorityMedium, 7
	}
}

// ClassifyMatrix places a task on the Eisenhower matrix. Urgent means due
// within two days or HIGH priority; important means anomaly-driven or at
// least MEDIUM priority.
func ClassifyMatrix(
	priority string,
	daysUntilDue float64,
	hasAnomaly bool,
) (urgency string, importance string, orderPriority int, quadrant string) {
	urgent := daysUntilDue <= 2 || priority == task.PriorityHigh
	important := hasAnomaly || priority == task.PriorityHigh || priority == task.PriorityMedium

	switch {
	case urgent && important:
		return task.UrgencyUrgent, task.ImportanceImportant, 1, task.QuadrantDoFirst
	case important:
		return task.UrgencyNotUrgent, task.ImportanceImportant, 2, task.QuadrantSchedule
	case urgent:
		return task.UrgencyUrgent, task.ImportanceNotImportant, 3, task.QuadrantDelegate
	default:
		return task.UrgencyNotUrgent, task.ImportanceNotImportant, 4, task.QuadrantEliminate
	}
}
