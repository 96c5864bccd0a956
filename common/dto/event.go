/*******************************************************************************
* Contributors: BMC Software, Inc. - BMC Helix Edge
*
* (c) Copyright 2020-2025 BMC Software, Inc.
*******************************************************************************/

package dto

const BASE_EVENT_CLASS = "OT_EVENT"

const (
	EVENT_CLASS_ANOMALY = "ANOMALY"
	EVENT_CLASS_HEALTH  = "HEALTH"
)

// CRITICAL, MAJOR, MINOR, WARNING, INFO, OK, UNKNOWN
const (
	SEVERITY_CRITICAL = "CRITICAL"
	SEVERITY_MAJOR    = "MAJOR"
	SEVERITY_MINOR    = "MINOR"
	SEVERITY_INFO     = "INFO"
)

const (
	EVENT_STATUS_OPEN   = "Open"
	EVENT_STATUS_CLOSED = "Closed"
)

// AnomalyEvent is the common event payload published on the message bus and
// indexed for search whenever the scoring pipeline flags a reading.
type AnomalyEvent struct {
	Id            string `json:"id,omitempty"               codec:"id,omitempty"`
	Class         string `json:"class,omitempty"            codec:"class,omitempty"`      // ANOMALY, HEALTH
	EventType     string `json:"event_type,omitempty"       codec:"event_type,omitempty"` // AnomalyDetected, HealthDegraded
	EquipmentName string `json:"equipment_name,omitempty"   codec:"equipment_name,omitempty"`
	Name          string `json:"name,omitempty"             codec:"name,omitempty"`
	Msg           string `json:"msg,omitempty"              codec:"msg,omitempty"`
	Severity      string `json:"severity,omitempty"         codec:"severity,omitempty"`
	RiskLevel     string `json:"risk_level,omitempty"       codec:"risk_level,omitempty"`
	Profile       string `json:"profile,omitempty"          codec:"profile,omitempty"`
	SourceNode    string `json:"source_node,omitempty"      codec:"source_node,omitempty"` // Node on which the reading was scored
	Status        string `json:"status,omitempty"           codec:"status,omitempty"`

	RelatedMetrics []string               `json:"related_metrics,omitempty"  codec:"related_metrics,omitempty"`
	Thresholds     map[string]interface{} `json:"thresholds,omitempty"       codec:"thresholds,omitempty"`
	ActualValues   map[string]interface{} `json:"actual_values,omitempty"`
	Unit           string                 `json:"unit,omitempty"             codec:"unit,omitempty"`
	Location       string                 `json:"location,omitempty"         codec:"location,omitempty"`
	Version        int64                  `json:"version,omitempty"          codec:"version,omitempty"`
	AdditionalData map[string]string      `json:"additional_data,omitempty"  codec:"additional_data,omitempty" xml:"-"`
	EventSource    string                 `json:"event_source,omitempty"     codec:"event_source,omitempty"`
	CorrelationId  string                 `json:"correlation_id,omitempty"   codec:"correlation_id,omitempty"`
	Labels         []string               `json:"labels,omitempty"           codec:"labels,omitempty"`
	Tasks          []TaskRef              `json:"tasks,omitempty"            codec:"tasks,omitempty"`
	Created        int64                  `json:"created,omitempty"          codec:"created,omitempty"`
	Modified       int64                  `json:"modified,omitempty"         codec:"modified,omitempty"`
	// We use this flag to indicate whether the same event is being updated or is it a first time.
	// Updates come when the severity changes or the status moves from open to closed.
	IsNewEvent bool `json:"new_event"                  codec:"new_event"`
}

// TaskRef ties an event to the maintenance task that was auto-created for it
type TaskRef struct {
	Id           string `json:"id,omitempty"            codec:"id,omitempty"`
	Title        string `json:"title,omitempty"         codec:"title,omitempty"`
	Priority     string `json:"priority,omitempty"      codec:"priority,omitempty"`
	Status       string `json:"status,omitempty"        codec:"status,omitempty"`
	ErrorMessage string `json:"error_message,omitempty" codec:"errorMessage,omitempty"`
}
