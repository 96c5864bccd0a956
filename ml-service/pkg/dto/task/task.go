/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package task

import "time"

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

const (
	UrgencyUrgent    = "URGENT"
	UrgencyNotUrgent = "NOT_URGENT"

	ImportanceImportant    = "IMPORTANT"
	ImportanceNotImportant = "NOT_IMPORTANT"
)

// Eisenhower quadrants in priority order
const (
	QuadrantDoFirst   = "DO_FIRST"  // urgent + important
	QuadrantSchedule  = "SCHEDULE"  // important, not urgent
	QuadrantDelegate  = "DELEGATE"  // urgent, not important
	QuadrantEliminate = "ELIMINATE" // neither
)

func IsValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func IsValidStatus(s string) bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusDone
}

// MaintenanceTask is one work order. Rows are append-only, completion flips
// Status and stamps CompletedAt rather than deleting anything.
type MaintenanceTask struct {
	ID          int64     `json:"id"          gorm:"primaryKey;autoIncrement" codec:"id"`
	EquipmentID string    `json:"equipmentId" gorm:"index;not null"           codec:"equipmentId" validate:"required,max=200,matchRegex=^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$"`
	Title       string    `json:"title"       gorm:"not null"                 codec:"title"       validate:"required,max=500"`
	Description string    `json:"description"                                 codec:"description"`
	DueDate     time.Time `json:"dueDate"                                     codec:"dueDate"`
	Priority    string    `json:"priority"                                    codec:"priority"`
	Status      string    `json:"status"      gorm:"default:NOT_STARTED"      codec:"status"`

	// Eisenhower classification
	Urgency            string `json:"urgency"            codec:"urgency"`
	Importance         string `json:"importance"         codec:"importance"`
	OrderPriority      int    `json:"orderPriority"      codec:"orderPriority"` // 1..4, quadrant rank
	EisenhowerQuadrant string `json:"eisenhowerQuadrant" codec:"eisenhowerQuadrant"`

	// AnomalyID ties an auto-created task back to the anomaly event that
	// raised it. The composite unique index keeps a replayed event from
	// producing a second task for the same equipment.
	AnomalyID   string `json:"anomalyId,omitempty" gorm:"uniqueIndex:idx_equipment_anomaly,where:anomaly_id <> ''" codec:"anomalyId,omitempty"`
	AutoCreated bool   `json:"autoCreated"         codec:"autoCreated"`
	AssignedTo  string `json:"assignedTo,omitempty" codec:"assignedTo,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"  codec:"createdBy,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"             gorm:"autoCreateTime" codec:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"                       codec:"completedAt,omitempty"`
}

func (task MaintenanceTask) TableName() string {
	return "plantpulse.maintenance_task"
}

// CreateTaskRequest is the manual task creation payload
type CreateTaskRequest struct {
	EquipmentID string    `json:"equipmentId" validate:"required,max=200,matchRegex=^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$"`
	Title       string    `json:"title"       validate:"required,max=500"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Priority    string    `json:"priority"`
	AssignedTo  string    `json:"assignedTo"`
}

// UpdateTaskRequest carries the mutable fields for PATCH
type UpdateTaskRequest struct {
	Status     *string `json:"status,omitempty"`
	AssignedTo *string `json:"assignedTo,omitempty"`
	Priority   *string `json:"priority,omitempty"`
}
