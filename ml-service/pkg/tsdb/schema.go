/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package tsdb

// SQL schema for the scored telemetry table

const (
	// ScoredReadingsTableSQL creates the scored_readings table. One row per
	// scored message, ordered for the per-machine window queries the REST
	// surface runs.
	ScoredReadingsTableSQL = `
		CREATE TABLE IF NOT EXISTS scored_readings (
			timestamp DateTime64(3),
			machine_id String,
			vibration Float64,
			temperature Float64,
			humidity Nullable(Float64),
			anomaly_score Float64,
			raw_score Float64,
			is_anomaly Bool,
			confidence Float64,
			risk_level LowCardinality(String),
			health_score Float64,
			health_status LowCardinality(String),
			status LowCardinality(String),
			model_type LowCardinality(String),
			model_version LowCardinality(String),
			fallback Bool,
			correlation_id String
		) ENGINE = MergeTree()
		ORDER BY (machine_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`
)

// AllTables returns all table creation SQL statements
func AllTables() []string {
	return []string{
		ScoredReadingsTableSQL,
	}
}
