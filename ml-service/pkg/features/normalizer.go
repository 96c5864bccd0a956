/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package features

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

// Static maxima the heuristic estimator falls back to until enough history
// exists to calibrate
const (
	DefaultVibrationMax   = 100.0
	DefaultTemperatureMax = 100.0
)

// DefaultSchema is the live-telemetry feature order used when the serving
// model carries no schema of its own
var DefaultSchema = []string{"vibration", "temperature", "humidity"}

// Calibration carries the reference maxima the heuristic estimator normalizes
// sensor values against. Zero or negative maxima fall back to the static
// defaults at use time.
type Calibration struct {
	VibrationMax   float64 `json:"vibrationMax"`
	TemperatureMax float64 `json:"temperatureMax"`
	Calibrated     bool    `json:"calibrated"`
	SampleCount    int     `json:"sampleCount"`
}

func DefaultCalibration() Calibration {
	return Calibration{
		VibrationMax:   DefaultVibrationMax,
		TemperatureMax: DefaultTemperatureMax,
	}
}

// Normalize maps a sensor reading onto the feature order the serving model was
// trained with. Null and non-finite values become 0.0 and are flagged in
// Imputed so downstream code can tell a substituted zero from a measured one.
// A schema column live telemetry cannot provide at all is a hard error; the
// scoring pipeline falls back to the heuristic estimator in that case.
func Normalize(reading telemetry.SensorReading, schema []string) (ml.FeatureVector, error) {
	if len(schema) == 0 {
		schema = DefaultSchema
	}
	featureVector := ml.FeatureVector{
		Schema: make([]string, len(schema)),
		Values: make([]float64, len(schema)),
	}
	copy(featureVector.Schema, schema)

	for i, name := range schema {
		value, known := featureValue(reading, name)
		if !known {
			return ml.FeatureVector{}, errors.Errorf(
				"feature %q is not available from live telemetry", name)
		}
		if value == nil || !isFinite(*value) {
			featureVector.Values[i] = 0
			if featureVector.Imputed == nil {
				featureVector.Imputed = make(map[string]bool)
			}
			featureVector.Imputed[name] = true
			continue
		}
		featureVector.Values[i] = *value
	}
	return featureVector, nil
}

// featureValue resolves a schema column against the reading. nil with known
// true means the sensor never reported the value.
func featureValue(reading telemetry.SensorReading, name string) (*float64, bool) {
	switch strings.ToLower(name) {
	case "vibration":
		return &reading.Vibration, true
	case "temperature":
		return &reading.Temperature, true
	case "humidity":
		return reading.Humidity, true
	default:
		return nil, false
	}
}

// EstimateScore is the heuristic stand-in used when no trained model is
// serving or the model produced a dead-zero score. Each sensor is normalized
// against its calibrated maximum, vibration weighted heavier than temperature,
// and the combined stress inverted so high stress gives a low score in [-1,1].
func EstimateScore(vibration, temperature float64, calibration Calibration) float64 {
	vibrationMax := calibration.VibrationMax
	if vibrationMax <= 0 {
		vibrationMax = DefaultVibrationMax
	}
	temperatureMax := calibration.TemperatureMax
	if temperatureMax <= 0 {
		temperatureMax = DefaultTemperatureMax
	}
	stress := 0.6*stressRatio(vibration, vibrationMax) +
		0.4*stressRatio(temperature, temperatureMax)
	return 1 - 2*stress
}

func stressRatio(value, maximum float64) float64 {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	return math.Min(value/maximum, 1)
}

// NormalizeScore remaps a canonical [-1,1] score onto [0,1]. NaN maps to 0,
// anything out of range clamps.
func NormalizeScore(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	normalized := (raw + 1) / 2
	return math.Max(0, math.Min(1, normalized))
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
