package training

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantpulse/ml-service/pkg/dto/telemetry"
)

func TestLoadCSV(t *testing.T) {
	t.Run("LoadCSV - Passed", func(t *testing.T) {
		raw := strings.Join([]string{
			"UID, Humidity ,Temperature,Age,Quantity,MTTF,machine_id",
			"1,45.0,60.0,12,1000,320,CNC-7",
			"2,,62.0,8,900,410,CNC-7",
			"3,55.0,58.0,20,1100,150,MILL-2",
		}, "\n")

		dataset, err := LoadCSV(strings.NewReader(raw))
		require.NoError(t, err)

		// the text column is excluded, headers are trimmed
		assert.Equal(t, []string{"UID", "Humidity", "Temperature", "Age", "Quantity", "MTTF"}, dataset.Columns)
		require.Len(t, dataset.Rows, 3)

		// the blank humidity cell is imputed with the column mean of 45 and 55
		assert.Equal(t, 1, dataset.ImputedCells)
		assert.InDelta(t, 50.0, dataset.Rows[1][1], 0.0001)
		assert.InDelta(t, 62.0, dataset.Rows[1][2], 0.0001)
	})

	t.Run("LoadCSV - Passed (stray bad cell treated as missing)", func(t *testing.T) {
		raw := strings.Join([]string{
			"vibration,temperature",
			"10.0,45.0",
			"N/A,46.0",
			"12.0,44.0",
		}, "\n")

		dataset, err := LoadCSV(strings.NewReader(raw))
		require.NoError(t, err)
		require.Len(t, dataset.Rows, 3)
		assert.Equal(t, 1, dataset.ImputedCells)
		assert.InDelta(t, 11.0, dataset.Rows[1][0], 0.0001)
	})

	t.Run("LoadCSV - Failed (empty input)", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader(""))
		assert.Error(t, err)
	})

	t.Run("LoadCSV - Failed (header only)", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader("vibration,temperature\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no data rows")
	})

	t.Run("LoadCSV - Failed (ragged rows)", func(t *testing.T) {
		raw := "vibration,temperature\n10.0,45.0\n11.0\n"
		_, err := LoadCSV(strings.NewReader(raw))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse the csv dataset")
	})

	t.Run("LoadCSV - Failed (no numeric columns)", func(t *testing.T) {
		raw := "machine_id,status\nCNC-7,NORMAL\nMILL-2,WARNING\n"
		_, err := LoadCSV(strings.NewReader(raw))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no numeric columns")
	})
}

func TestDataset_Select(t *testing.T) {
	dataset := &Dataset{
		Columns: []string{"Humidity", "Temperature", "Age"},
		Rows:    [][]float64{{45, 60, 12}, {55, 58, 20}},
	}

	t.Run("Select - Passed (reordered projection)", func(t *testing.T) {
		matrix, err := dataset.Select([]string{"Age", "Humidity"})
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{12, 45}, {20, 55}}, matrix)
	})

	t.Run("Select - Failed (unknown column)", func(t *testing.T) {
		_, err := dataset.Select([]string{"Pressure"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `column "Pressure" not found`)
	})
}

func TestDataset_FeatureColumns(t *testing.T) {
	dataset := &Dataset{Columns: []string{"UID", "Humidity", "Temperature", "Age", "Quantity", "MTTF"}}

	// the identity column is always excluded, the target by name regardless
	// of case
	assert.Equal(t, []string{"Humidity", "Temperature", "Age", "Quantity"},
		dataset.FeatureColumns("mttf"))
	assert.Equal(t, []string{"Humidity", "Temperature", "Age", "Quantity", "MTTF"},
		dataset.FeatureColumns())
}

func TestDataset_Column(t *testing.T) {
	dataset := &Dataset{
		Columns: []string{"Age", "MTTF"},
		Rows:    [][]float64{{12, 320}, {20, 150}},
	}

	targets, found := dataset.Column("MTTF")
	require.True(t, found)
	assert.Equal(t, []float64{320, 150}, targets)

	_, found = dataset.Column("Pressure")
	assert.False(t, found)
}

func TestFromReadings(t *testing.T) {
	humidity := 48.0
	readings := []telemetry.SensorReading{
		{MachineID: "CNC-7", Vibration: 10, Temperature: 45, Humidity: &humidity},
		{MachineID: "CNC-7", Vibration: 11, Temperature: 46},
		{MachineID: "MILL-2", Vibration: 12, Temperature: 44, Humidity: &humidity},
	}

	dataset := FromReadings(readings)

	assert.Equal(t, []string{"vibration", "temperature", "humidity"}, dataset.Columns)
	require.Len(t, dataset.Rows, 3)
	assert.Equal(t, 1, dataset.ImputedCells)
	// the missing humidity takes the mean of the readings that carry one
	assert.InDelta(t, 48.0, dataset.Rows[1][2], 0.0001)
	assert.Equal(t, []float64{10, 45, 48}, dataset.Rows[0])
}
