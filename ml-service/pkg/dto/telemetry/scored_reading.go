/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package telemetry

// Live machine status derived from the latest scored reading
const (
	StatusNormal  = "NORMAL"
	StatusWarning = "WARNING"
	StatusAnomaly = "ANOMALY"
)

// ScoredReading is the result of running a SensorReading through the scoring
// pipeline. This is the row persisted to the time-series store and the payload
// returned by the live endpoint.
type ScoredReading struct {
	SensorReading

	// AnomalyScore is the 0..100 presentation score, RawScore is the canonical
	// detector output in [-1,1] that the health classifier consumes.
	AnomalyScore        float64  `json:"anomalyScore"                  codec:"anomalyScore"`
	RawScore            float64  `json:"rawScore"                      codec:"rawScore"`
	IsAnomaly           bool     `json:"isAnomaly"                     codec:"isAnomaly"`
	Confidence          float64  `json:"confidence"                    codec:"confidence"`
	RiskLevel           string   `json:"riskLevel"                     codec:"riskLevel"`
	ContributingFactors []string `json:"contributingFactors,omitempty" codec:"contributingFactors,omitempty"`

	HealthScore   float64 `json:"healthScore"            codec:"healthScore"`
	HealthStatus  string  `json:"healthStatus"           codec:"healthStatus"`
	Status        string  `json:"status"                 codec:"status"` // NORMAL, WARNING, ANOMALY
	ModelType     string  `json:"modelType,omitempty"    codec:"modelType,omitempty"`
	ModelVersion  string  `json:"modelVersion,omitempty" codec:"modelVersion,omitempty"`
	Fallback      bool    `json:"fallback"               codec:"fallback"` // true when the heuristic estimator scored this reading
	CorrelationId string  `json:"correlationId,omitempty" codec:"correlationId,omitempty"`
}

// Alert is one rule violation raised over recent scored readings
type Alert struct {
	MachineID string  `json:"machineId"`
	Timestamp int64   `json:"timestamp"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Reason    string  `json:"reason"`
	Severity  string  `json:"severity"`
}

// MachineStats is the aggregate summary served by the stats endpoint
type MachineStats struct {
	MachineID       string             `json:"machineId"`
	WindowStart     int64              `json:"windowStart"`
	WindowEnd       int64              `json:"windowEnd"`
	ReadingCount    int64              `json:"readingCount"`
	AnomalyCount    int64              `json:"anomalyCount"`
	AnomalyRate     float64            `json:"anomalyRate"`
	Means           map[string]float64 `json:"means"`
	Maxima          map[string]float64 `json:"maxima"`
	Percentiles     map[string]float64 `json:"percentiles"` // p50/p90/p95/p99 of anomaly score
	AvgHealthScore  float64            `json:"avgHealthScore"`
	LatestTimestamp int64              `json:"latestTimestamp"`
}
