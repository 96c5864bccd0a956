/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"plantpulse/ml-service/pkg/dto/telemetry"
	"plantpulse/ml-service/pkg/features"
)

const (
	// MinTrainingRows is the smallest dataset a training request is accepted
	// with; anything below is rejected before any registry write happens.
	MinTrainingRows = 100

	// DefaultHistoryRows caps how many recent readings are pulled from the
	// telemetry store when no dataset is uploaded with the request.
	DefaultHistoryRows = 10000

	// identityColumn is the row identifier column of uploaded equipment
	// datasets; it never participates in training.
	identityColumn = "UID"
)

// Dataset is a cleaned numeric training matrix. Non-numeric columns of the
// source are already excluded and missing cells mean-imputed.
type Dataset struct {
	Columns      []string
	Rows         [][]float64
	ImputedCells int
}

// LoadCSV reads an uploaded CSV dataset into a numeric matrix. Column names
// are whitespace-trimmed; a column is kept when most of its values parse as
// numbers, and the stray unparseable or empty cells of a kept column are
// filled with the column mean.
func LoadCSV(reader io.Reader) (*Dataset, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	content, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse the csv dataset")
	}
	if len(content) < 2 {
		return nil, errors.New("the dataset is empty or has no data rows")
	}

	header := make([]string, len(content[0]))
	for i, name := range content[0] {
		header[i] = strings.TrimSpace(name)
	}
	records := content[1:]

	type columnStats struct {
		parsed int
		filled int
		sum    float64
	}
	stats := make([]columnStats, len(header))
	for _, record := range records {
		for col := range header {
			if col >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[col])
			if cell == "" {
				continue
			}
			stats[col].filled++
			if value, parseErr := strconv.ParseFloat(cell, 64); parseErr == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
				stats[col].parsed++
				stats[col].sum += value
			}
		}
	}

	var kept []int
	var columns []string
	means := make(map[int]float64)
	for col, name := range header {
		if stats[col].parsed == 0 || stats[col].parsed*2 < stats[col].filled {
			continue
		}
		kept = append(kept, col)
		columns = append(columns, name)
		means[col] = stats[col].sum / float64(stats[col].parsed)
	}
	if len(columns) == 0 {
		return nil, errors.New("no numeric columns found in the dataset")
	}

	dataset := &Dataset{Columns: columns}
	for _, record := range records {
		row := make([]float64, len(kept))
		for i, col := range kept {
			if col < len(record) {
				cell := strings.TrimSpace(record[col])
				if value, parseErr := strconv.ParseFloat(cell, 64); parseErr == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
					row[i] = value
					continue
				}
			}
			row[i] = means[col]
			dataset.ImputedCells++
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}

// FromReadings builds a training dataset from stored telemetry using the
// live feature schema. Missing humidity values are imputed with the mean of
// the readings that carry one, or zero when none do.
func FromReadings(readings []telemetry.SensorReading) *Dataset {
	var humiditySum float64
	var humidityCount int
	for _, reading := range readings {
		if reading.Humidity != nil {
			humiditySum += *reading.Humidity
			humidityCount++
		}
	}
	humidityMean := 0.0
	if humidityCount > 0 {
		humidityMean = humiditySum / float64(humidityCount)
	}

	dataset := &Dataset{Columns: append([]string(nil), features.DefaultSchema...)}
	for _, reading := range readings {
		humidity := humidityMean
		if reading.Humidity != nil {
			humidity = *reading.Humidity
		} else {
			dataset.ImputedCells++
		}
		dataset.Rows = append(dataset.Rows, []float64{reading.Vibration, reading.Temperature, humidity})
	}
	return dataset
}

// Select projects the dataset onto the named columns, in order. A requested
// column that the dataset does not carry is a hard error, not a silent drop.
func (d *Dataset) Select(names []string) ([][]float64, error) {
	indexes := make([]int, len(names))
	for i, name := range names {
		index := d.columnIndex(name)
		if index < 0 {
			return nil, fmt.Errorf("column %q not found in the dataset (available: %s)",
				name, strings.Join(d.Columns, ", "))
		}
		indexes[i] = index
	}
	matrix := make([][]float64, len(d.Rows))
	for rowNum, row := range d.Rows {
		projected := make([]float64, len(indexes))
		for i, index := range indexes {
			projected[i] = row[index]
		}
		matrix[rowNum] = projected
	}
	return matrix, nil
}

// Column returns one column as a target vector
func (d *Dataset) Column(name string) ([]float64, bool) {
	index := d.columnIndex(name)
	if index < 0 {
		return nil, false
	}
	values := make([]float64, len(d.Rows))
	for rowNum, row := range d.Rows {
		values[rowNum] = row[index]
	}
	return values, true
}

// FeatureColumns lists the dataset columns that act as model features,
// excluding the identity column and any named exclusions (the target).
func (d *Dataset) FeatureColumns(exclude ...string) []string {
	excluded := map[string]struct{}{strings.ToLower(identityColumn): {}}
	for _, name := range exclude {
		excluded[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	var selected []string
	for _, name := range d.Columns {
		if _, skip := excluded[strings.ToLower(name)]; skip {
			continue
		}
		selected = append(selected, name)
	}
	return selected
}

func (d *Dataset) columnIndex(name string) int {
	for i, column := range d.Columns {
		if strings.EqualFold(column, name) {
			return i
		}
	}
	return -1
}
