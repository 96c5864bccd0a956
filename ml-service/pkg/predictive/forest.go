/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package predictive

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/ensemble"
)

const (
	AlgorithmRandomForestRegressor = "RandomForestRegressor"

	DefaultTreeCount       = 150
	DefaultMaxDepth        = 12
	DefaultMinSamplesSplit = 5
	DefaultMinSamplesLeaf  = 2
	DefaultRandomState     = 42
)

// DefaultFeatures is the equipment profile schema the MTTF model trains on,
// matching the training dataset column names.
var DefaultFeatures = []string{"Humidity", "Temperature", "Age", "Quantity"}

// RegressionNode is one node of a regression tree, kept in a flat slice with
// child indexes; Left < 0 marks a leaf carrying the mean target value.
type RegressionNode struct {
	Feature int     `json:"feature"`
	Split   float64 `json:"split"`
	Left    int     `json:"left"`
	Right   int     `json:"right"`
	Value   float64 `json:"value"`
}

// RandomForestRegressor predicts the remaining hours to failure from an
// equipment profile. Bootstrap-sampled variance-reduction trees, averaged.
type RandomForestRegressor struct {
	TreeCount       int                      `json:"treeCount"`
	MaxDepth        int                      `json:"maxDepth"`
	MinSamplesSplit int                      `json:"minSamplesSplit"`
	MinSamplesLeaf  int                      `json:"minSamplesLeaf"`
	RandomState     int64                    `json:"randomState"`
	Trees           [][]RegressionNode       `json:"trees"`
	Importances     []float64                `json:"importances"`
	FeatureNames    []string                 `json:"featureNames"`
	Scaler          *ensemble.StandardScaler `json:"scaler"`
	Fitted          bool                     `json:"fitted"`
}

func NewRandomForestRegressor() *RandomForestRegressor {
	return &RandomForestRegressor{
		TreeCount:       DefaultTreeCount,
		MaxDepth:        DefaultMaxDepth,
		MinSamplesSplit: DefaultMinSamplesSplit,
		MinSamplesLeaf:  DefaultMinSamplesLeaf,
		RandomState:     DefaultRandomState,
		Scaler:          &ensemble.StandardScaler{},
	}
}

func (f *RandomForestRegressor) Fit(featureMatrix [][]float64, targets []float64, featureNames []string) error {
	if len(featureMatrix) == 0 {
		return errors.New("random forest: no training rows")
	}
	if len(featureMatrix) != len(targets) {
		return errors.Errorf("random forest: %d feature rows but %d targets", len(featureMatrix), len(targets))
	}
	if f.TreeCount <= 0 || f.MaxDepth <= 0 || f.MinSamplesSplit < 2 || f.MinSamplesLeaf < 1 {
		return errors.New("random forest: invalid tree parameters")
	}
	if f.Scaler == nil {
		f.Scaler = &ensemble.StandardScaler{}
	}
	if err := f.Scaler.Fit(featureMatrix); err != nil {
		return err
	}
	scaled, err := f.Scaler.TransformMatrix(featureMatrix)
	if err != nil {
		return err
	}
	f.FeatureNames = featureNames

	builder := &regressionBuilder{
		features:    scaled,
		targets:     targets,
		maxDepth:    f.MaxDepth,
		minSplit:    f.MinSamplesSplit,
		minLeaf:     f.MinSamplesLeaf,
		importances: make([]float64, len(scaled[0])),
	}
	rng := rand.New(rand.NewSource(f.RandomState))
	f.Trees = make([][]RegressionNode, 0, f.TreeCount)
	for t := 0; t < f.TreeCount; t++ {
		// bootstrap sample, same size as the training set
		rows := make([]int, len(scaled))
		for i := range rows {
			rows[i] = rng.Intn(len(scaled))
		}
		tree := make([]RegressionNode, 0, 2*len(scaled)/f.MinSamplesLeaf)
		builder.build(rows, 0, &tree)
		f.Trees = append(f.Trees, tree)
	}

	if total := floats.Sum(builder.importances); total > 0 {
		floats.Scale(1/total, builder.importances)
	}
	f.Importances = builder.importances
	f.Fitted = true
	return nil
}

// Predict returns the forest-averaged target for one profile vector.
func (f *RandomForestRegressor) Predict(featureVector []float64) (float64, error) {
	if !f.Fitted {
		return 0, errors.New("random forest: not fitted")
	}
	scaled, err := f.Scaler.Transform(featureVector)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, tree := range f.Trees {
		total += regressionTreePredict(tree, scaled)
	}
	return total / float64(len(f.Trees)), nil
}

// PredictMTTF wraps Predict with the maintenance risk bands and the operator
// recommendation for the band.
func (f *RandomForestRegressor) PredictMTTF(featureVector []float64) (ml.MTTFPrediction, error) {
	hours, err := f.Predict(featureVector)
	if err != nil {
		return ml.MTTFPrediction{}, err
	}
	riskLevel := ml.MTTFRiskLevelFor(hours)
	return ml.MTTFPrediction{
		MTTFHours:      math.Round(hours*100) / 100,
		MTTFDays:       math.Round(hours/24*10) / 10,
		RiskLevel:      riskLevel,
		Recommendation: RecommendationFor(riskLevel),
	}, nil
}

// Evaluate scores the fitted forest on a held-out set.
func (f *RandomForestRegressor) Evaluate(featureMatrix [][]float64, targets []float64) (mae, rmse, r2 float64, err error) {
	if len(featureMatrix) == 0 || len(featureMatrix) != len(targets) {
		return 0, 0, 0, errors.New("random forest: evaluation set is empty or mismatched")
	}
	absSum, sqSum := 0.0, 0.0
	targetSum := 0.0
	for i, row := range featureMatrix {
		predicted, predictErr := f.Predict(row)
		if predictErr != nil {
			return 0, 0, 0, predictErr
		}
		residual := targets[i] - predicted
		absSum += math.Abs(residual)
		sqSum += residual * residual
		targetSum += targets[i]
	}
	n := float64(len(targets))
	mae = absSum / n
	rmse = math.Sqrt(sqSum / n)

	targetMean := targetSum / n
	ssTot := 0.0
	for _, target := range targets {
		ssTot += (target - targetMean) * (target - targetMean)
	}
	switch {
	case ssTot > 0:
		r2 = 1 - sqSum/ssTot
	case sqSum == 0:
		r2 = 1
	default:
		r2 = 0
	}
	return mae, rmse, r2, nil
}

// Hyperparameters reports the configuration for registry version metadata.
func (f *RandomForestRegressor) Hyperparameters() map[string]interface{} {
	return map[string]interface{}{
		"treeCount":       f.TreeCount,
		"maxDepth":        f.MaxDepth,
		"minSamplesSplit": f.MinSamplesSplit,
		"minSamplesLeaf":  f.MinSamplesLeaf,
	}
}

// RecommendationFor maps an MTTF risk band onto the maintenance action shown
// to operators.
func RecommendationFor(riskLevel string) string {
	switch riskLevel {
	case ml.RiskCritical:
		return "IMMEDIATE MAINTENANCE REQUIRED"
	case ml.RiskHigh:
		return "Schedule maintenance within 1-2 weeks"
	case ml.RiskMedium:
		return "Monitor closely, plan maintenance"
	default:
		return "Continue normal operation"
	}
}

type regressionBuilder struct {
	features    [][]float64
	targets     []float64
	maxDepth    int
	minSplit    int
	minLeaf     int
	importances []float64
}

func (b *regressionBuilder) build(rows []int, depth int, tree *[]RegressionNode) int {
	mean, sse := meanAndSSE(b.targets, rows)
	if depth >= b.maxDepth || len(rows) < b.minSplit || sse == 0 {
		return appendRegressionLeaf(tree, mean)
	}
	feature, split, gain, ok := b.bestSplit(rows, sse)
	if !ok {
		return appendRegressionLeaf(tree, mean)
	}
	b.importances[feature] += gain

	var left, right []int
	for _, row := range rows {
		if b.features[row][feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	nodeIdx := len(*tree)
	*tree = append(*tree, RegressionNode{Feature: feature, Split: split, Left: -1, Right: -1})
	(*tree)[nodeIdx].Left = b.build(left, depth+1, tree)
	(*tree)[nodeIdx].Right = b.build(right, depth+1, tree)
	return nodeIdx
}

// bestSplit scans every feature with a prefix-sum pass and returns the split
// with the largest squared-error reduction that leaves minLeaf rows on each
// side.
func (b *regressionBuilder) bestSplit(rows []int, parentSSE float64) (int, float64, float64, bool) {
	bestFeature, bestSplitVal, bestGain := -1, 0.0, 0.0
	order := make([]int, len(rows))

	totalSum, totalSq := 0.0, 0.0
	for _, row := range rows {
		totalSum += b.targets[row]
		totalSq += b.targets[row] * b.targets[row]
	}

	for feature := 0; feature < len(b.features[rows[0]]); feature++ {
		copy(order, rows)
		sort.Slice(order, func(i, j int) bool {
			return b.features[order[i]][feature] < b.features[order[j]][feature]
		})

		leftSum, leftSq := 0.0, 0.0
		for i := 0; i < len(order)-1; i++ {
			target := b.targets[order[i]]
			leftSum += target
			leftSq += target * target

			leftCount := i + 1
			rightCount := len(order) - leftCount
			if leftCount < b.minLeaf || rightCount < b.minLeaf {
				continue
			}
			current, next := b.features[order[i]][feature], b.features[order[i+1]][feature]
			if next <= current {
				continue
			}

			leftSSE := leftSq - leftSum*leftSum/float64(leftCount)
			rightSum := totalSum - leftSum
			rightSSE := (totalSq - leftSq) - rightSum*rightSum/float64(rightCount)
			if gain := parentSSE - leftSSE - rightSSE; gain > bestGain {
				bestFeature = feature
				bestSplitVal = (current + next) / 2
				bestGain = gain
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, 0, false
	}
	return bestFeature, bestSplitVal, bestGain, true
}

func regressionTreePredict(tree []RegressionNode, scaled []float64) float64 {
	nodeIdx := 0
	for {
		node := tree[nodeIdx]
		if node.Left < 0 {
			return node.Value
		}
		if scaled[node.Feature] < node.Split {
			nodeIdx = node.Left
		} else {
			nodeIdx = node.Right
		}
	}
}

func appendRegressionLeaf(tree *[]RegressionNode, value float64) int {
	nodeIdx := len(*tree)
	*tree = append(*tree, RegressionNode{Feature: -1, Left: -1, Right: -1, Value: value})
	return nodeIdx
}

func meanAndSSE(targets []float64, rows []int) (float64, float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	sum, sq := 0.0, 0.0
	for _, row := range rows {
		sum += targets[row]
		sq += targets[row] * targets[row]
	}
	mean := sum / float64(len(rows))
	sse := sq - sum*sum/float64(len(rows))
	if sse < 0 {
		sse = 0
	}
	return mean, sse
}
