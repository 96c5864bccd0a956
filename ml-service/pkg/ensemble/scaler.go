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
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each feature on its mean and divides by the standard
// deviation. Constant features scale by 1 so transforms stay finite.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func (s *StandardScaler) Fit(featureMatrix [][]float64) error {
	width, err := matrixWidth(featureMatrix)
	if err != nil {
		return err
	}
	s.Mean = make([]float64, width)
	s.Std = make([]float64, width)
	for j := 0; j < width; j++ {
		col := column(featureMatrix, j)
		s.Mean[j] = stat.Mean(col, nil)
		std := stat.StdDev(col, nil)
		if math.IsNaN(std) || std == 0 {
			std = 1
		}
		s.Std[j] = std
	}
	return nil
}

func (s *StandardScaler) Transform(featureVector []float64) ([]float64, error) {
	if len(featureVector) != len(s.Mean) {
		return nil, errors.Errorf("scaler: vector has %d values, want %d", len(featureVector), len(s.Mean))
	}
	scaled := make([]float64, len(featureVector))
	for j, value := range featureVector {
		scaled[j] = (value - s.Mean[j]) / s.Std[j]
	}
	return scaled, nil
}

func (s *StandardScaler) TransformMatrix(featureMatrix [][]float64) ([][]float64, error) {
	scaled := make([][]float64, len(featureMatrix))
	for i, row := range featureMatrix {
		scaledRow, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		scaled[i] = scaledRow
	}
	return scaled, nil
}

// RobustScaler centers on the median and scales by the interquartile range so
// the occasional extreme sensor reading does not dominate the fit.
type RobustScaler struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

func (s *RobustScaler) Fit(featureMatrix [][]float64) error {
	width, err := matrixWidth(featureMatrix)
	if err != nil {
		return err
	}
	s.Center = make([]float64, width)
	s.Scale = make([]float64, width)
	for j := 0; j < width; j++ {
		col := column(featureMatrix, j)
		sort.Float64s(col)
		s.Center[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
		iqr := stat.Quantile(0.75, stat.Empirical, col, nil) - stat.Quantile(0.25, stat.Empirical, col, nil)
		if iqr == 0 {
			iqr = 1
		}
		s.Scale[j] = iqr
	}
	return nil
}

func (s *RobustScaler) Transform(featureVector []float64) ([]float64, error) {
	if len(featureVector) != len(s.Center) {
		return nil, errors.Errorf("scaler: vector has %d values, want %d", len(featureVector), len(s.Center))
	}
	scaled := make([]float64, len(featureVector))
	for j, value := range featureVector {
		scaled[j] = (value - s.Center[j]) / s.Scale[j]
	}
	return scaled, nil
}

func (s *RobustScaler) TransformMatrix(featureMatrix [][]float64) ([][]float64, error) {
	scaled := make([][]float64, len(featureMatrix))
	for i, row := range featureMatrix {
		scaledRow, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		scaled[i] = scaledRow
	}
	return scaled, nil
}

func matrixWidth(featureMatrix [][]float64) (int, error) {
	if len(featureMatrix) == 0 {
		return 0, errors.New("scaler: no training rows")
	}
	width := len(featureMatrix[0])
	if width == 0 {
		return 0, errors.New("scaler: empty feature row")
	}
	for i, row := range featureMatrix {
		if len(row) != width {
			return 0, errors.Errorf("scaler: row %d has %d values, want %d", i, len(row), width)
		}
	}
	return width, nil
}

func column(featureMatrix [][]float64, j int) []float64 {
	col := make([]float64, len(featureMatrix))
	for i, row := range featureMatrix {
		col[i] = row[j]
	}
	return col
}
