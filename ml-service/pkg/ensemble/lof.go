/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ensemble

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultNeighbors = 20

	// lofOffset is the novelty-mode decision boundary: an outlier factor past
	// 1.5 votes anomaly.
	lofOffset = 1.5

	// lrdEpsilon keeps reachability densities finite when training rows are
	// duplicated and all reachability distances collapse to zero.
	lrdEpsilon = 1e-10
)

// LocalOutlierFactor flags points whose local density is low relative to the
// density of their nearest training neighbors. Fitted in novelty mode: the
// training set is assumed normal and kept so new points can be scored
// against it.
type LocalOutlierFactor struct {
	Neighbors      int           `json:"neighbors"`
	Contamination  float64       `json:"contamination"`
	Train          [][]float64   `json:"train"`
	KDistances     []float64     `json:"kDistances"`
	LocalDensities []float64     `json:"localDensities"`
	Scaler         *RobustScaler `json:"scaler"`
	Fitted         bool          `json:"fitted"`
}

func NewLocalOutlierFactor() *LocalOutlierFactor {
	return &LocalOutlierFactor{
		Neighbors:     DefaultNeighbors,
		Contamination: DefaultContamination,
		Scaler:        &RobustScaler{},
	}
}

func (l *LocalOutlierFactor) Name() string {
	return AlgorithmLocalOutlierFactor
}

func (l *LocalOutlierFactor) IsFitted() bool {
	return l.Fitted
}

func (l *LocalOutlierFactor) Fit(featureMatrix [][]float64) error {
	if len(featureMatrix) < 2 {
		return errors.New("local outlier factor: needs at least two training rows")
	}
	if l.Neighbors <= 0 {
		return errors.New("local outlier factor: neighbor count must be positive")
	}
	if l.Scaler == nil {
		l.Scaler = &RobustScaler{}
	}
	if err := l.Scaler.Fit(featureMatrix); err != nil {
		return err
	}
	scaled, err := l.Scaler.TransformMatrix(featureMatrix)
	if err != nil {
		return err
	}

	l.Train = scaled
	k := l.effectiveNeighbors()
	neighborhoods := make([][]neighborDistance, len(scaled))
	l.KDistances = make([]float64, len(scaled))
	for i := range scaled {
		neighborhoods[i] = nearestNeighbors(scaled, scaled[i], k, i)
		l.KDistances[i] = neighborhoods[i][k-1].dist
	}
	l.LocalDensities = make([]float64, len(scaled))
	for i := range scaled {
		l.LocalDensities[i] = localReachabilityDensity(neighborhoods[i], l.KDistances, k)
	}
	l.Fitted = true
	return nil
}

// Predict compares the query's local reachability density against its
// neighbors'. A ratio well above 1 means the point sits in a sparser region
// than the training data around it.
func (l *LocalOutlierFactor) Predict(featureVector []float64) (bool, float64, error) {
	if !l.Fitted {
		return false, 0, errors.New("local outlier factor: not fitted")
	}
	scaled, err := l.Scaler.Transform(featureVector)
	if err != nil {
		return false, 0, err
	}

	k := l.effectiveNeighbors()
	neighbors := nearestNeighbors(l.Train, scaled, k, -1)
	queryDensity := localReachabilityDensity(neighbors, l.KDistances, k)
	neighborDensity := 0.0
	for _, neighbor := range neighbors {
		neighborDensity += l.LocalDensities[neighbor.idx]
	}
	outlierFactor := neighborDensity / float64(k) / queryDensity

	return outlierFactor > lofOffset, clampPct((outlierFactor - 1) * 50), nil
}

func (l *LocalOutlierFactor) effectiveNeighbors() int {
	k := l.Neighbors
	if limit := len(l.Train) - 1; k > limit {
		k = limit
	}
	return k
}

type neighborDistance struct {
	idx  int
	dist float64
}

func nearestNeighbors(train [][]float64, query []float64, k int, skipIdx int) []neighborDistance {
	candidates := make([]neighborDistance, 0, len(train))
	for i, row := range train {
		if i == skipIdx {
			continue
		}
		candidates = append(candidates, neighborDistance{idx: i, dist: floats.Distance(row, query, 2)})
	}
	sort.Slice(candidates, func(a, b int) bool { return candidates[a].dist < candidates[b].dist })
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}

func localReachabilityDensity(neighbors []neighborDistance, kDistances []float64, k int) float64 {
	reachSum := 0.0
	for _, neighbor := range neighbors {
		reach := kDistances[neighbor.idx]
		if neighbor.dist > reach {
			reach = neighbor.dist
		}
		reachSum += reach
	}
	return float64(k) / (reachSum + lrdEpsilon)
}
