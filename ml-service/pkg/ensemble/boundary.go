/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ensemble

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// OneClassBoundary learns a closed boundary around the normal training data
// in RBF kernel space. The boundary radius is set so a nu fraction of the
// training set falls outside, matching the one-class SVM convention that nu
// bounds the training outlier rate.
type OneClassBoundary struct {
	Nu     float64         `json:"nu"`
	Gamma  float64         `json:"gamma"`
	Radius float64         `json:"radius"`
	Train  [][]float64     `json:"train"`
	Scaler *StandardScaler `json:"scaler"`
	Fitted bool            `json:"fitted"`
}

func NewOneClassBoundary() *OneClassBoundary {
	return &OneClassBoundary{
		Nu:     DefaultContamination,
		Scaler: &StandardScaler{},
	}
}

func (b *OneClassBoundary) Name() string {
	return AlgorithmOneClassBoundary
}

func (b *OneClassBoundary) IsFitted() bool {
	return b.Fitted
}

func (b *OneClassBoundary) Fit(featureMatrix [][]float64) error {
	if len(featureMatrix) == 0 {
		return errors.New("one-class boundary: no training rows")
	}
	if b.Nu <= 0 || b.Nu >= 1 {
		return errors.New("one-class boundary: nu must be in (0,1)")
	}
	if b.Scaler == nil {
		b.Scaler = &StandardScaler{}
	}
	if err := b.Scaler.Fit(featureMatrix); err != nil {
		return err
	}
	scaled, err := b.Scaler.TransformMatrix(featureMatrix)
	if err != nil {
		return err
	}
	b.Train = scaled

	if b.Gamma <= 0 {
		variance := pooledVariance(scaled)
		if math.IsNaN(variance) || variance == 0 {
			variance = 1
		}
		b.Gamma = 1 / (float64(len(scaled[0])) * variance)
	}

	distances := make([]float64, len(scaled))
	for i, row := range scaled {
		distances[i] = boundaryDistance(b.kernelSimilarity(row))
	}
	sort.Float64s(distances)
	b.Radius = stat.Quantile(1-b.Nu, stat.Empirical, distances, nil)
	b.Fitted = true
	return nil
}

// Predict compares the query's kernel distance to the training mass against
// the fitted radius. A negative decision sits outside the boundary.
func (b *OneClassBoundary) Predict(featureVector []float64) (bool, float64, error) {
	if !b.Fitted {
		return false, 0, errors.New("one-class boundary: not fitted")
	}
	scaled, err := b.Scaler.Transform(featureVector)
	if err != nil {
		return false, 0, err
	}
	decision := b.Radius - boundaryDistance(b.kernelSimilarity(scaled))
	return decision < 0, clampPct((1 - decision) * 25), nil
}

// kernelSimilarity is the mean RBF kernel response against the training set,
// 1 at a training point and falling toward 0 far from the data.
func (b *OneClassBoundary) kernelSimilarity(scaled []float64) float64 {
	total := 0.0
	for _, row := range b.Train {
		dist := floats.Distance(row, scaled, 2)
		total += math.Exp(-b.Gamma * dist * dist)
	}
	return total / float64(len(b.Train))
}

func boundaryDistance(similarity float64) float64 {
	return math.Sqrt(math.Max(0, 2-2*similarity))
}

func pooledVariance(rows [][]float64) float64 {
	values := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		values = append(values, row...)
	}
	return stat.Variance(values, nil)
}
