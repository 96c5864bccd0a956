/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package tsdb

import (
	"context"
	"fmt"
	"time"

	"github.com/caio/go-tdigest/v4"
	"github.com/pkg/errors"

	"plantpulse/ml-service/pkg/dto/telemetry"
	"plantpulse/ml-service/pkg/features"
)

// Alert rule thresholds over recent scored rows. A row is an alert candidate
// once its raw score drops below the warning line.
const (
	alertCandidateScore       = 0.1
	alertAnomalyScore         = -0.5
	alertVibrationThreshold   = 75.0
	alertTemperatureThreshold = 70.0
)

// History returns the scored readings of the window, oldest first. An empty
// machineID means all machines.
func (store *ReadingStore) History(ctx context.Context, machineID string, window time.Duration, limit int) ([]telemetry.ScoredReading, error) {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	limit = normalizeLimit(limit, defaultHistoryLimit, maxHistoryLimit)

	query := `
		SELECT timestamp, machine_id, vibration, temperature, humidity,
			anomaly_score, raw_score, is_anomaly, confidence, risk_level,
			health_score, health_status, status, model_type, model_version, fallback, correlation_id
		FROM scored_readings
		WHERE timestamp >= ?
	`
	args := []interface{}{time.Now().Add(-window).UTC()}
	if machineID != "" {
		query += " AND machine_id = ?"
		args = append(args, machineID)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := store.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query reading history")
	}
	defer rows.Close()

	var history []telemetry.ScoredReading
	for rows.Next() {
		var (
			reading   telemetry.ScoredReading
			timestamp time.Time
		)
		err = rows.Scan(
			&timestamp,
			&reading.MachineID,
			&reading.Vibration,
			&reading.Temperature,
			&reading.Humidity,
			&reading.AnomalyScore,
			&reading.RawScore,
			&reading.IsAnomaly,
			&reading.Confidence,
			&reading.RiskLevel,
			&reading.HealthScore,
			&reading.HealthStatus,
			&reading.Status,
			&reading.ModelType,
			&reading.ModelVersion,
			&reading.Fallback,
			&reading.CorrelationId,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan reading history row")
		}
		reading.Timestamp = timestamp.UnixMilli()
		history = append(history, reading)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read reading history rows")
	}

	// Query returns newest first, charts want chronological order
	reverseReadings(history)
	return history, nil
}

// Stats aggregates the window into the dashboard summary. Percentiles of the
// anomaly score come from a t-digest over the window's scores.
func (store *ReadingStore) Stats(ctx context.Context, machineID string, window time.Duration) (telemetry.MachineStats, error) {
	if window <= 0 {
		window = DefaultStatsWindow
	}
	now := time.Now()
	windowStart := now.Add(-window).UTC()

	stats := telemetry.MachineStats{
		MachineID:   machineID,
		WindowStart: windowStart.UnixMilli(),
		WindowEnd:   now.UnixMilli(),
		Means:       map[string]float64{},
		Maxima:      map[string]float64{},
		Percentiles: map[string]float64{},
	}

	query := `
		SELECT count() AS readings,
			countIf(status = 'ANOMALY') AS anomalies,
			avg(vibration) AS avg_vibration,
			max(vibration) AS max_vibration,
			avg(temperature) AS avg_temperature,
			max(temperature) AS max_temperature,
			avg(raw_score) AS avg_score,
			avg(health_score) AS avg_health,
			max(timestamp) AS latest
		FROM scored_readings
		WHERE timestamp >= ?
	`
	args := []interface{}{windowStart}
	if machineID != "" {
		query += " AND machine_id = ?"
		args = append(args, machineID)
	}

	var (
		readings, anomalies            uint64
		avgVibration, maxVibration     float64
		avgTemperature, maxTemperature float64
		avgScore, avgHealth            float64
		latest                         time.Time
	)
	row := store.conn.QueryRow(ctx, query, args...)
	err := row.Scan(&readings, &anomalies, &avgVibration, &maxVibration,
		&avgTemperature, &maxTemperature, &avgScore, &avgHealth, &latest)
	if err != nil {
		return stats, errors.Wrap(err, "failed to query machine stats")
	}
	if readings == 0 {
		return stats, nil
	}

	stats.ReadingCount = int64(readings)
	stats.AnomalyCount = int64(anomalies)
	stats.AnomalyRate = float64(anomalies) / float64(readings) * 100
	stats.Means["vibration"] = avgVibration
	stats.Means["temperature"] = avgTemperature
	stats.Means["rawScore"] = avgScore
	stats.Maxima["vibration"] = maxVibration
	stats.Maxima["temperature"] = maxTemperature
	stats.AvgHealthScore = avgHealth
	stats.LatestTimestamp = latest.UnixMilli()

	scores, err := store.windowScores(ctx, machineID, windowStart)
	if err != nil {
		return stats, err
	}
	stats.Percentiles = percentilesOf(scores)
	return stats, nil
}

func (store *ReadingStore) windowScores(ctx context.Context, machineID string, windowStart time.Time) ([]float64, error) {
	query := "SELECT anomaly_score FROM scored_readings WHERE timestamp >= ?"
	args := []interface{}{windowStart}
	if machineID != "" {
		query += " AND machine_id = ?"
		args = append(args, machineID)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, statsPercentileCap)

	rows, err := store.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query window scores")
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err = rows.Scan(&score); err != nil {
			return nil, errors.Wrap(err, "failed to scan window score")
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// Alerts expands recent low-scoring rows into per-rule alerts, newest first
func (store *ReadingStore) Alerts(ctx context.Context, machineID string, limit int) ([]telemetry.Alert, error) {
	limit = normalizeLimit(limit, defaultAlertLimit, maxAlertLimit)

	query := `
		SELECT timestamp, machine_id, vibration, temperature, raw_score
		FROM scored_readings
		WHERE timestamp >= ? AND raw_score < ?
	`
	args := []interface{}{time.Now().Add(-DefaultAlertWindow).UTC(), alertCandidateScore}
	if machineID != "" {
		query += " AND machine_id = ?"
		args = append(args, machineID)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := store.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query alerts")
	}
	defer rows.Close()

	var alerts []telemetry.Alert
	for rows.Next() {
		var (
			timestamp                        time.Time
			rowMachineID                     string
			vibration, temperature, rawScore float64
		)
		if err = rows.Scan(&timestamp, &rowMachineID, &vibration, &temperature, &rawScore); err != nil {
			return nil, errors.Wrap(err, "failed to scan alert row")
		}
		alerts = append(alerts, alertsForReading(rowMachineID, timestamp.UnixMilli(), vibration, temperature, rawScore)...)
	}
	return alerts, rows.Err()
}

// RecentReadings returns the newest raw telemetry rows across all machines,
// the source for store-backed training and model resets
func (store *ReadingStore) RecentReadings(ctx context.Context, limit int) ([]telemetry.SensorReading, error) {
	if limit <= 0 || limit > trainingSampleCap {
		limit = trainingSampleCap
	}

	query := `
		SELECT timestamp, machine_id, vibration, temperature, humidity
		FROM scored_readings
		ORDER BY timestamp DESC LIMIT ?
	`
	rows, err := store.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent readings")
	}
	defer rows.Close()

	var readings []telemetry.SensorReading
	for rows.Next() {
		var (
			reading   telemetry.SensorReading
			timestamp time.Time
		)
		err = rows.Scan(&timestamp, &reading.MachineID, &reading.Vibration, &reading.Temperature, &reading.Humidity)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan recent reading row")
		}
		reading.Timestamp = timestamp.UnixMilli()
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// CalibrationSamples satisfies features.SampleSource with the fleet-wide
// vibration/temperature points of the window
func (store *ReadingStore) CalibrationSamples(ctx context.Context, window time.Duration) ([]features.CalibrationSample, error) {
	if window <= 0 {
		window = features.DefaultCalibrationWindow
	}

	query := `
		SELECT vibration, temperature
		FROM scored_readings
		WHERE timestamp >= ? LIMIT ?
	`
	rows, err := store.conn.Query(ctx, query, time.Now().Add(-window).UTC(), calibrationSampleCap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query calibration samples")
	}
	defer rows.Close()

	var samples []features.CalibrationSample
	for rows.Next() {
		var sample features.CalibrationSample
		if err = rows.Scan(&sample.Vibration, &sample.Temperature); err != nil {
			return nil, errors.Wrap(err, "failed to scan calibration sample")
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// alertsForReading applies the alert rules to one low-scoring row. Every
// triggered rule becomes its own alert, a candidate row that trips no rule
// still surfaces as a generic score alert.
func alertsForReading(machineID string, timestamp int64, vibration, temperature, rawScore float64) []telemetry.Alert {
	severity := telemetry.StatusWarning
	if rawScore < alertAnomalyScore {
		severity = telemetry.StatusAnomaly
	}

	var alerts []telemetry.Alert
	if vibration > alertVibrationThreshold {
		alerts = append(alerts, telemetry.Alert{
			MachineID: machineID,
			Timestamp: timestamp,
			Metric:    "vibration",
			Value:     vibration,
			Threshold: alertVibrationThreshold,
			Reason:    fmt.Sprintf("High vibration: %.1f", vibration),
			Severity:  severity,
		})
	}
	if temperature > alertTemperatureThreshold {
		alerts = append(alerts, telemetry.Alert{
			MachineID: machineID,
			Timestamp: timestamp,
			Metric:    "temperature",
			Value:     temperature,
			Threshold: alertTemperatureThreshold,
			Reason:    fmt.Sprintf("High temperature: %.1f°C", temperature),
			Severity:  severity,
		})
	}
	if rawScore < alertAnomalyScore {
		alerts = append(alerts, telemetry.Alert{
			MachineID: machineID,
			Timestamp: timestamp,
			Metric:    "ai_score",
			Value:     rawScore,
			Threshold: alertAnomalyScore,
			Reason:    fmt.Sprintf("Low AI score: %.3f", rawScore),
			Severity:  severity,
		})
	}
	if len(alerts) == 0 {
		alerts = append(alerts, telemetry.Alert{
			MachineID: machineID,
			Timestamp: timestamp,
			Metric:    "ai_score",
			Value:     rawScore,
			Threshold: alertCandidateScore,
			Reason:    fmt.Sprintf("AI score: %.3f", rawScore),
			Severity:  severity,
		})
	}
	return alerts
}

// percentilesOf summarizes the anomaly score distribution of a window
func percentilesOf(scores []float64) map[string]float64 {
	percentiles := map[string]float64{}
	if len(scores) == 0 {
		return percentiles
	}

	digest, _ := tdigest.New()
	for _, score := range scores {
		_ = digest.Add(score)
	}
	percentiles["p50"] = digest.Quantile(0.50)
	percentiles["p90"] = digest.Quantile(0.90)
	percentiles["p95"] = digest.Quantile(0.95)
	percentiles["p99"] = digest.Quantile(0.99)
	return percentiles
}

func normalizeLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

func reverseReadings(readings []telemetry.ScoredReading) {
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
}
