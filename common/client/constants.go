/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package client

// Constants related to how services identify themselves in the Service Registry
const (
	ServiceKeyPulsePrefix = "app-plantpulse-"

	// ServiceNames
	PulseMLScoringServiceName    = "plantpulse-ml-scoring"
	PulseMLManagementServiceName = "plantpulse-ml-management"

	// ServiceKeys - note that the service key should start with app- for appservices
	PulseMLScoringServiceKey    = "app-plantpulse-ml-scoring"
	PulseMLManagementServiceKey = "app-plantpulse-ml-management"
	PulseSwaggerUIServiceKey    = "app-plantpulse-swagger-ui"
)

const (
	MetricAnomalyEvent = "AnomalyEvent"
	MetricTask         = "MaintenanceTask"

	LabelEquipmentName   = "equipment"
	LabelEquipmentLabels = "tags"
	LabelProfileName     = "profile"
	LabelNodeName        = "host"
	LabelCorrelationId   = "correlation_id"
	LabelEventType       = "type"
	LabelEventSummary    = "summary"
	LabelTaskSummary     = "summary"
	LabelModelType       = "model_type"
	LabelModelVersion    = "model_version"
	LabelStatus          = "status"

	StatusSuccess = "Success"
	StatusFail    = "Failed"
	StatusClosed  = "Closed"
)
