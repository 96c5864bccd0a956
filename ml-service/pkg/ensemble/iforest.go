/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ensemble

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

const (
	DefaultTreeCount     = 100
	DefaultSubsampleSize = 256

	eulerMascheroni = 0.5772156649
)

// ForestNode is one node of an isolation tree. Trees are kept as flat slices
// with child indexes so a trained forest serializes cleanly; Left < 0 marks a
// leaf and Size is the number of training rows that reached it.
type ForestNode struct {
	Feature int     `json:"feature"`
	Split   float64 `json:"split"`
	Left    int     `json:"left"`
	Right   int     `json:"right"`
	Size    int     `json:"size"`
}

// IsolationForest isolates anomalies through random axis-aligned splits:
// points that separate from the rest of the data in fewer splits score as
// more anomalous.
type IsolationForest struct {
	TreeCount     int            `json:"treeCount"`
	SubsampleSize int            `json:"subsampleSize"`
	Contamination float64        `json:"contamination"`
	RandomState   int64          `json:"randomState"`
	SampleSize    int            `json:"sampleSize"`
	Trees         [][]ForestNode `json:"trees"`
	Scaler        *RobustScaler  `json:"scaler"`
	Fitted        bool           `json:"fitted"`
}

func NewIsolationForest() *IsolationForest {
	return &IsolationForest{
		TreeCount:     DefaultTreeCount,
		SubsampleSize: DefaultSubsampleSize,
		Contamination: DefaultContamination,
		RandomState:   DefaultRandomState,
		Scaler:        &RobustScaler{},
	}
}

func (f *IsolationForest) Name() string {
	return AlgorithmIsolationForest
}

func (f *IsolationForest) IsFitted() bool {
	return f.Fitted
}

func (f *IsolationForest) Fit(featureMatrix [][]float64) error {
	if len(featureMatrix) == 0 {
		return errors.New("isolation forest: no training rows")
	}
	if f.TreeCount <= 0 || f.SubsampleSize <= 0 {
		return errors.New("isolation forest: tree count and subsample size must be positive")
	}
	if f.Scaler == nil {
		f.Scaler = &RobustScaler{}
	}
	if err := f.Scaler.Fit(featureMatrix); err != nil {
		return err
	}
	scaled, err := f.Scaler.TransformMatrix(featureMatrix)
	if err != nil {
		return err
	}

	f.SampleSize = f.SubsampleSize
	if f.SampleSize > len(scaled) {
		f.SampleSize = len(scaled)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(f.SampleSize))))
	rng := rand.New(rand.NewSource(f.RandomState))

	f.Trees = make([][]ForestNode, 0, f.TreeCount)
	for t := 0; t < f.TreeCount; t++ {
		sample := make([][]float64, 0, f.SampleSize)
		for _, rowIdx := range rng.Perm(len(scaled))[:f.SampleSize] {
			sample = append(sample, scaled[rowIdx])
		}
		tree := make([]ForestNode, 0, 2*f.SampleSize)
		buildIsolationTree(&tree, sample, 0, heightLimit, rng)
		f.Trees = append(f.Trees, tree)
	}
	f.Fitted = true
	return nil
}

// Predict votes anomaly when the average path length is shorter than the
// subsample norm, ie when the paper's score s(x) crosses 0.5. The percentage
// maps the [-0.5,0.5] decision range inversely onto [0,100].
func (f *IsolationForest) Predict(featureVector []float64) (bool, float64, error) {
	if !f.Fitted {
		return false, 0, errors.New("isolation forest: not fitted")
	}
	scaled, err := f.Scaler.Transform(featureVector)
	if err != nil {
		return false, 0, err
	}
	decision := 0.5 - f.anomalyScore(scaled)
	return decision < 0, clampPct((0.5 - decision) * 100), nil
}

func (f *IsolationForest) anomalyScore(scaled []float64) float64 {
	norm := averagePathLength(f.SampleSize)
	if norm == 0 || len(f.Trees) == 0 {
		return 0
	}
	total := 0.0
	for _, tree := range f.Trees {
		total += treePathLength(tree, scaled)
	}
	return math.Pow(2, -(total/float64(len(f.Trees)))/norm)
}

func treePathLength(tree []ForestNode, scaled []float64) float64 {
	depth := 0.0
	nodeIdx := 0
	for {
		node := tree[nodeIdx]
		if node.Left < 0 {
			return depth + averagePathLength(node.Size)
		}
		depth++
		if scaled[node.Feature] < node.Split {
			nodeIdx = node.Left
		} else {
			nodeIdx = node.Right
		}
	}
}

func buildIsolationTree(tree *[]ForestNode, rows [][]float64, height, heightLimit int, rng *rand.Rand) int {
	if height >= heightLimit || len(rows) <= 1 {
		return appendLeaf(tree, len(rows))
	}

	// pick a random feature that still has spread; a partition collapsed to
	// identical points becomes a leaf
	feature, split := -1, 0.0
	for _, candidate := range rng.Perm(len(rows[0])) {
		lo, hi := rows[0][candidate], rows[0][candidate]
		for _, row := range rows[1:] {
			if row[candidate] < lo {
				lo = row[candidate]
			}
			if row[candidate] > hi {
				hi = row[candidate]
			}
		}
		if hi > lo {
			feature = candidate
			split = lo + rng.Float64()*(hi-lo)
			break
		}
	}
	if feature < 0 {
		return appendLeaf(tree, len(rows))
	}

	var left, right [][]float64
	for _, row := range rows {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	nodeIdx := len(*tree)
	*tree = append(*tree, ForestNode{Feature: feature, Split: split, Left: -1, Right: -1, Size: len(rows)})
	(*tree)[nodeIdx].Left = buildIsolationTree(tree, left, height+1, heightLimit, rng)
	(*tree)[nodeIdx].Right = buildIsolationTree(tree, right, height+1, heightLimit, rng)
	return nodeIdx
}

func appendLeaf(tree *[]ForestNode, size int) int {
	nodeIdx := len(*tree)
	*tree = append(*tree, ForestNode{Feature: -1, Left: -1, Right: -1, Size: size})
	return nodeIdx
}

// averagePathLength is c(n) from the isolation forest paper, the expected
// unsuccessful-search path length of a binary search tree with n nodes. It
// normalizes tree depths and estimates the remaining depth below a leaf.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		harmonic := math.Log(float64(n-1)) + eulerMascheroni
		return 2*harmonic - 2*float64(n-1)/float64(n)
	}
}
