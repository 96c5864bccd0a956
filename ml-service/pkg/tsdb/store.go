/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

// Package tsdb persists scored telemetry to ClickHouse and serves the
// window queries behind the history, stats and alerts endpoints. Writes are
// best-effort for the scoring pipeline, the caller logs and keeps scoring
// when a write fails.
package tsdb

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/pkg/errors"

	"plantpulse/ml-service/pkg/dto/telemetry"
	"plantpulse/ml-service/pkg/features"
)

const (
	DefaultHistoryWindow = time.Hour
	DefaultStatsWindow   = 24 * time.Hour
	DefaultAlertWindow   = 24 * time.Hour

	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	defaultAlertLimit   = 20
	maxAlertLimit       = 100

	// Fleet-wide reads for training and calibration are capped rather than
	// paged, matching what the consumers can usefully digest.
	trainingSampleCap    = 10000
	calibrationSampleCap = 50000
	statsPercentileCap   = 10000
)

type ReadingStoreInterface interface {
	SaveScoredReading(ctx context.Context, reading telemetry.ScoredReading) error
	History(ctx context.Context, machineID string, window time.Duration, limit int) ([]telemetry.ScoredReading, error)
	Stats(ctx context.Context, machineID string, window time.Duration) (telemetry.MachineStats, error)
	Alerts(ctx context.Context, machineID string, limit int) ([]telemetry.Alert, error)
	RecentReadings(ctx context.Context, limit int) ([]telemetry.SensorReading, error)
	CalibrationSamples(ctx context.Context, window time.Duration) ([]features.CalibrationSample, error)
	Ping(ctx context.Context) error
	Close() error
}

// ReadingStore is the ClickHouse-backed implementation of ReadingStoreInterface
type ReadingStore struct {
	conn driver.Conn
	lc   logger.LoggingClient
}

// NewReadingStore connects using the service's Tsdb_* app settings and the
// tsdbconnection secret, then makes sure the schema exists. Connection
// failures are retried until the database comes up.
func NewReadingStore(service interfaces.ApplicationService) (*ReadingStore, error) {
	store := &ReadingStore{
		conn: getTsdbConnection(service),
		lc:   service.LoggingClient(),
	}
	if err := store.InitSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// NewReadingStoreWithConn wraps an existing connection, schema setup is the
// caller's problem
func NewReadingStoreWithConn(conn driver.Conn, lc logger.LoggingClient) *ReadingStore {
	return &ReadingStore{conn: conn, lc: lc}
}

// InitSchema creates the necessary tables if they don't exist
func (store *ReadingStore) InitSchema(ctx context.Context) error {
	for _, tableSQL := range AllTables() {
		if err := store.conn.Exec(ctx, tableSQL); err != nil {
			return errors.Wrap(err, "failed to create scored telemetry table")
		}
	}
	store.lc.Info("telemetry store schema initialized")
	return nil
}

// SaveScoredReading appends one scored row
func (store *ReadingStore) SaveScoredReading(ctx context.Context, reading telemetry.ScoredReading) error {
	query := `
		INSERT INTO scored_readings (timestamp, machine_id, vibration, temperature, humidity,
			anomaly_score, raw_score, is_anomaly, confidence, risk_level,
			health_score, health_status, status, model_type, model_version, fallback, correlation_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := store.conn.Exec(ctx, query,
		time.UnixMilli(reading.Timestamp).UTC(),
		reading.MachineID,
		reading.Vibration,
		reading.Temperature,
		reading.Humidity,
		reading.AnomalyScore,
		reading.RawScore,
		reading.IsAnomaly,
		reading.Confidence,
		reading.RiskLevel,
		reading.HealthScore,
		reading.HealthStatus,
		reading.Status,
		reading.ModelType,
		reading.ModelVersion,
		reading.Fallback,
		reading.CorrelationId,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to insert scored reading for %s", reading.MachineID)
	}
	return nil
}

func (store *ReadingStore) Ping(ctx context.Context) error {
	return store.conn.Ping(ctx)
}

func (store *ReadingStore) Close() error {
	if store.conn != nil {
		if err := store.conn.Close(); err != nil {
			return errors.Wrap(err, "failed to close telemetry store connection")
		}
	}
	return nil
}
