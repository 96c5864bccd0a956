/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package features

import (
	"context"
	"time"

	"github.com/caio/go-tdigest/v4"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/patrickmn/go-cache"
)

const (
	DefaultCalibrationWindow = 24 * time.Hour
	DefaultCalibrationTTL    = 15 * time.Minute

	calibrationKey      = "calibration"
	calibrationQuantile = 0.95
	// Below this many points the p95 is too noisy to trust over the defaults
	minCalibrationSamples = 20
)

// CalibrationSample is one historical telemetry point the estimator
// calibrates against
type CalibrationSample struct {
	Vibration   float64
	Temperature float64
}

// SampleSource hands back recent telemetry for calibration, normally the
// time-series store
type SampleSource interface {
	CalibrationSamples(ctx context.Context, window time.Duration) ([]CalibrationSample, error)
}

// CalibrationCache keeps the p95 maxima of a sliding history window and
// refreshes them lazily once the cached entry expires. History being
// unreachable is tolerated, scoring continues on the static defaults.
type CalibrationCache struct {
	source SampleSource
	lc     logger.LoggingClient
	window time.Duration
	cache  *cache.Cache
}

func NewCalibrationCache(
	source SampleSource,
	lc logger.LoggingClient,
	window time.Duration,
	ttl time.Duration,
) *CalibrationCache {
	if window <= 0 {
		window = DefaultCalibrationWindow
	}
	if ttl <= 0 {
		ttl = DefaultCalibrationTTL
	}
	return &CalibrationCache{
		source: source,
		lc:     lc,
		window: window,
		cache:  cache.New(ttl, ttl+time.Minute),
	}
}

// Current returns the cached calibration, recalibrating from history when the
// entry has expired
func (cc *CalibrationCache) Current(ctx context.Context) Calibration {
	if cached, found := cc.cache.Get(calibrationKey); found {
		return cached.(Calibration)
	}
	calibration := cc.refresh(ctx)
	cc.cache.Set(calibrationKey, calibration, cache.DefaultExpiration)
	return calibration
}

// Invalidate drops the cached entry so the next Current call recalibrates
func (cc *CalibrationCache) Invalidate() {
	cc.cache.Delete(calibrationKey)
}

func (cc *CalibrationCache) refresh(ctx context.Context) Calibration {
	calibration := DefaultCalibration()
	if cc.source == nil {
		return calibration
	}

	samples, err := cc.source.CalibrationSamples(ctx, cc.window)
	if err != nil {
		cc.lc.Warnf("calibration window query failed, keeping static maxima: %v", err)
		return calibration
	}
	if len(samples) < minCalibrationSamples {
		cc.lc.Debugf("only %d calibration samples in the last %v, keeping static maxima",
			len(samples), cc.window)
		return calibration
	}

	vibration, _ := tdigest.New()
	temperature, _ := tdigest.New()
	for _, sample := range samples {
		if isFinite(sample.Vibration) {
			_ = vibration.Add(sample.Vibration)
		}
		if isFinite(sample.Temperature) {
			_ = temperature.Add(sample.Temperature)
		}
	}

	if vibration.Count() >= minCalibrationSamples {
		if p95 := vibration.Quantile(calibrationQuantile); p95 > 0 {
			calibration.VibrationMax = p95
			calibration.Calibrated = true
		}
	}
	if temperature.Count() >= minCalibrationSamples {
		if p95 := temperature.Quantile(calibrationQuantile); p95 > 0 {
			calibration.TemperatureMax = p95
			calibration.Calibrated = true
		}
	}
	calibration.SampleCount = len(samples)

	cc.lc.Infof("calibration refreshed: vibrationMax=%.2f temperatureMax=%.2f from %d samples",
		calibration.VibrationMax, calibration.TemperatureMax, len(samples))
	return calibration
}
