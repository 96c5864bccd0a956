/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ensemble

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"plantpulse/ml-service/pkg/dto/ml"
)

const (
	AlgorithmIsolationForest    = "isolation_forest"
	AlgorithmLocalOutlierFactor = "lof"
	AlgorithmOneClassBoundary   = "one_class_boundary"
	AlgorithmEnsemble           = "ensemble"
)

const (
	DefaultContamination   = 0.05
	DefaultVotingThreshold = 0.5
	DefaultRandomState     = 42

	// ImportanceSampleRows caps the permutation-importance batch.
	ImportanceSampleRows = 100
	// ImportanceThreshold is the minimum share of importance a feature needs
	// before it can be named a contributing factor.
	ImportanceThreshold = 0.1

	// FactorGeneralDeviation is reported when the vote is anomalous but no
	// single feature crossed its red line.
	FactorGeneralDeviation = "General pattern deviation detected"

	// fallbackWeight applies to a detector missing from the weight map.
	fallbackWeight = 0.33
)

// DefaultWeights is the per-detector share of the blended 0-100 score.
var DefaultWeights = map[string]float64{
	AlgorithmIsolationForest:    0.40,
	AlgorithmLocalOutlierFactor: 0.35,
	AlgorithmOneClassBoundary:   0.25,
}

// Detector is one voting member of the ensemble.
type Detector interface {
	Name() string
	Fit(featureMatrix [][]float64) error
	// Predict returns the binary anomaly vote and the detector's 0-100
	// anomaly percentage for one feature vector.
	Predict(featureVector []float64) (bool, float64, error)
	IsFitted() bool
}

// EnsembleDetector blends three detectors with different failure modes:
// random-split isolation, local density, and a one-class kernel boundary.
// Each casts a binary vote; the blended percentage score drives the risk
// level. A detector that fails to fit or predict is dropped from the vote so
// one broken member does not take scoring down.
type EnsembleDetector struct {
	Forest          *IsolationForest    `json:"forest"`
	Outlier         *LocalOutlierFactor `json:"outlier"`
	Boundary        *OneClassBoundary   `json:"boundary"`
	Weights         map[string]float64  `json:"weights"`
	VotingThreshold float64             `json:"votingThreshold"`
	Contamination   float64             `json:"contamination"`
	FeatureNames    []string            `json:"featureNames"`
	Importances     []float64           `json:"importances"`
	Fitted          bool                `json:"fitted"`

	// FitWarnings records detectors skipped during the last Fit, for the
	// caller to log.
	FitWarnings []string `json:"-"`
}

func NewEnsembleDetector() *EnsembleDetector {
	weights := make(map[string]float64, len(DefaultWeights))
	for name, weight := range DefaultWeights {
		weights[name] = weight
	}
	return &EnsembleDetector{
		Forest:          NewIsolationForest(),
		Outlier:         NewLocalOutlierFactor(),
		Boundary:        NewOneClassBoundary(),
		Weights:         weights,
		VotingThreshold: DefaultVotingThreshold,
		Contamination:   DefaultContamination,
	}
}

// Fit trains all detectors concurrently on the same feature matrix. A
// detector that fails is recorded in FitWarnings and skipped; Fit only
// errors when no detector at all could be fitted.
func (e *EnsembleDetector) Fit(featureMatrix [][]float64, featureNames []string) error {
	if len(featureMatrix) == 0 {
		return errors.New("ensemble: no training rows")
	}
	if len(featureNames) == 0 {
		featureNames = make([]string, len(featureMatrix[0]))
		for i := range featureNames {
			featureNames[i] = fmt.Sprintf("feature_%d", i)
		}
	}
	e.FeatureNames = featureNames
	e.FitWarnings = nil

	var mu sync.Mutex
	var fitErrs *multierror.Error
	g, _ := errgroup.WithContext(context.Background())
	for _, detector := range e.detectors() {
		detector := detector
		g.Go(func() error {
			if err := detector.Fit(featureMatrix); err != nil {
				mu.Lock()
				fitErrs = multierror.Append(fitErrs, err)
				e.FitWarnings = append(e.FitWarnings, fmt.Sprintf("detector %s failed to fit: %v", detector.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(e.fittedDetectors()) == 0 {
		if err := fitErrs.ErrorOrNil(); err != nil {
			return errors.Wrap(err, "ensemble: no detector could be fitted")
		}
		return errors.New("ensemble: no detectors configured")
	}
	e.estimateImportances(featureMatrix)
	e.Fitted = true
	return nil
}

// Predict runs every fitted detector and combines the votes. The decision is
// the unweighted vote ratio against the voting threshold; the 0-100 anomaly
// score is the weighted blend of the detectors' percentages. Unanimous votes
// carry confidence 95, split votes degrade toward 50.
func (e *EnsembleDetector) Predict(featureVector []float64) (ml.AnomalyPrediction, error) {
	if !e.Fitted {
		return ml.AnomalyPrediction{}, errors.New("ensemble: detector not fitted")
	}
	if len(featureVector) != len(e.FeatureNames) {
		return ml.AnomalyPrediction{}, errors.Errorf(
			"ensemble: feature vector has %d values, model expects %d", len(featureVector), len(e.FeatureNames))
	}

	votes := make(map[string]bool)
	weightedScore := 0.0
	anomalyVotes := 0
	var predictErrs *multierror.Error
	for _, detector := range e.fittedDetectors() {
		vote, pctScore, err := detector.Predict(featureVector)
		if err != nil {
			predictErrs = multierror.Append(predictErrs, err)
			continue
		}
		votes[detector.Name()] = vote
		weight, ok := e.Weights[detector.Name()]
		if !ok {
			weight = fallbackWeight
		}
		weightedScore += weight * pctScore
		if vote {
			anomalyVotes++
		}
	}
	if len(votes) == 0 {
		if err := predictErrs.ErrorOrNil(); err != nil {
			return ml.AnomalyPrediction{}, errors.Wrap(err, "ensemble: prediction unavailable, no usable detectors")
		}
		return ml.AnomalyPrediction{}, errors.New("ensemble: prediction unavailable, no usable detectors")
	}

	voteRatio := float64(anomalyVotes) / float64(len(votes))
	confidence := 95.0
	if voteRatio != 0 && voteRatio != 1 {
		confidence = 50 + math.Abs(voteRatio-0.5)*80
	}

	return ml.AnomalyPrediction{
		IsAnomaly:           voteRatio >= e.VotingThreshold,
		AnomalyScore:        weightedScore,
		RawScore:            (50 - weightedScore) / 50,
		Confidence:          confidence,
		AlgorithmVotes:      votes,
		ContributingFactors: e.contributingFactors(featureVector),
		RiskLevel:           ml.RiskLevelFor(weightedScore),
	}, nil
}

// FittedDetectors lists the detectors that survived fitting, in voting order.
func (e *EnsembleDetector) FittedDetectors() []string {
	var names []string
	for _, detector := range e.fittedDetectors() {
		names = append(names, detector.Name())
	}
	return names
}

// Hyperparameters reports the configuration for registry version metadata.
func (e *EnsembleDetector) Hyperparameters() map[string]interface{} {
	params := map[string]interface{}{
		"votingThreshold": e.VotingThreshold,
		"contamination":   e.Contamination,
		"weights":         e.Weights,
	}
	if e.Forest != nil {
		params["treeCount"] = e.Forest.TreeCount
		params["subsampleSize"] = e.Forest.SubsampleSize
	}
	if e.Outlier != nil {
		params["neighbors"] = e.Outlier.Neighbors
	}
	if e.Boundary != nil {
		params["nu"] = e.Boundary.Nu
		params["gamma"] = e.Boundary.Gamma
	}
	return params
}

func (e *EnsembleDetector) detectors() []Detector {
	var all []Detector
	if e.Forest != nil {
		all = append(all, e.Forest)
	}
	if e.Outlier != nil {
		all = append(all, e.Outlier)
	}
	if e.Boundary != nil {
		all = append(all, e.Boundary)
	}
	return all
}

func (e *EnsembleDetector) fittedDetectors() []Detector {
	var fitted []Detector
	for _, detector := range e.detectors() {
		if detector.IsFitted() {
			fitted = append(fitted, detector)
		}
	}
	return fitted
}

// estimateImportances permutes one feature at a time over a small batch and
// measures how far the isolation forest's anomaly rate moves; the shifts are
// normalized to sum to 1. Importances stay nil when the forest is not
// available.
func (e *EnsembleDetector) estimateImportances(featureMatrix [][]float64) {
	if e.Forest == nil || !e.Forest.Fitted {
		return
	}
	rows := featureMatrix
	if len(rows) > ImportanceSampleRows {
		rows = rows[:ImportanceSampleRows]
	}

	baseRate := e.forestAnomalyRate(rows)
	rng := rand.New(rand.NewSource(e.Forest.RandomState))
	importances := make([]float64, len(e.FeatureNames))
	for featureIdx := range importances {
		permuted := make([][]float64, len(rows))
		for i, row := range rows {
			cp := make([]float64, len(row))
			copy(cp, row)
			permuted[i] = cp
		}
		rng.Shuffle(len(permuted), func(i, j int) {
			permuted[i][featureIdx], permuted[j][featureIdx] = permuted[j][featureIdx], permuted[i][featureIdx]
		})
		importances[featureIdx] = math.Abs(e.forestAnomalyRate(permuted) - baseRate)
	}

	if total := floats.Sum(importances); total > 0 {
		floats.Scale(1/total, importances)
	}
	e.Importances = importances
}

func (e *EnsembleDetector) forestAnomalyRate(rows [][]float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	flagged := 0
	for _, row := range rows {
		if vote, _, err := e.Forest.Predict(row); err == nil && vote {
			flagged++
		}
	}
	return float64(flagged) / float64(len(rows))
}

func (e *EnsembleDetector) contributingFactors(featureVector []float64) []string {
	if e.Importances == nil {
		return nil
	}
	var factors []string
	for i, name := range e.FeatureNames {
		if i >= len(e.Importances) || e.Importances[i] <= ImportanceThreshold {
			continue
		}
		if factor, ok := factorFor(name, featureVector[i]); ok {
			factors = append(factors, factor)
		}
	}
	if len(factors) == 0 {
		return []string{FactorGeneralDeviation}
	}
	return factors
}

// factorFor renders a feature that crossed its operational red line into a
// human-readable cause.
func factorFor(name string, value float64) (string, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "temperature") && value > 70:
		return fmt.Sprintf("High %s: %.1f°C", name, value), true
	case strings.Contains(lower, "humidity") && value > 80:
		return fmt.Sprintf("High %s: %.1f%%", name, value), true
	case strings.Contains(lower, "vibration") && value > 85:
		return fmt.Sprintf("High %s: %.1f", name, value), true
	case strings.Contains(lower, "age") && value > 15:
		return fmt.Sprintf("Equipment aging: %.0f months", value), true
	}
	return "", false
}

func clampPct(value float64) float64 {
	return math.Max(0, math.Min(100, value))
}
