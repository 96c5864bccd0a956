package router

import (
	"bytes"
	"fmt"
	"math/rand"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"plantpulse/mocks/plantpulse/common/infrastructure/interfaces/utils"
	redismocks "plantpulse/mocks/plantpulse/ml-service/pkg/db/redis"
	registrymocks "plantpulse/mocks/plantpulse/ml-service/pkg/registry"
	tasksmocks "plantpulse/mocks/plantpulse/ml-service/pkg/tasks"
	tsdbmocks "plantpulse/mocks/plantpulse/ml-service/pkg/tsdb"
	"plantpulse/ml-service/internal/training"
	"plantpulse/ml-service/pkg/dto/telemetry"
	"plantpulse/ml-service/pkg/predictive"
)

const userIdHeader = "X-Credential-Identifier"

var (
	mockedDbClient  *redismocks.MockMLDbInterface
	mockedRegistry  *registrymocks.MockRegistryInterface
	mockedTaskStore *tasksmocks.MockTaskStore
	mockedStore     *tsdbmocks.MockReadingStore
)

func buildRouter() *Router {
	u := utils.NewApplicationServiceMock(map[string]string{"UserId_header": userIdHeader})

	mockedDbClient = &redismocks.MockMLDbInterface{}
	mockedRegistry = &registrymocks.MockRegistryInterface{}
	mockedTaskStore = &tasksmocks.MockTaskStore{}
	mockedStore = &tsdbmocks.MockReadingStore{}

	router := new(Router)
	router.service = u.AppService
	router.appConfig = &ManagementConfig{MaxUploadSizeMb: defaultMaxUploadSizeMb}
	router.modelRegistry = mockedRegistry
	router.trainingService = training.NewTrainingService(
		u.AppService,
		mockedDbClient,
		mockedRegistry,
		mockedStore,
	)
	router.taskStore = mockedTaskStore
	router.readingStore = mockedStore
	router.validate = validator.New()
	router.validate.RegisterValidation("matchRegex", matchRegex)
	return router
}

// multipartCSV wraps a CSV payload into a multipart form body the way a
// browser upload would
func multipartCSV(t *testing.T, csvBody string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "dataset.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func goldenBatchCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("vibration,temperature,humidity\n")
	r := rand.New(rand.NewSource(7))
	for i := 0; i < rows; i++ {
		sb.WriteString(fmt.Sprintf("%.3f,%.3f,%.3f\n",
			10+2*float64(i%20)/20+r.NormFloat64()*0.2,
			45+r.NormFloat64()*0.5,
			50+r.NormFloat64()))
	}
	return sb.String()
}

func storedReadings(count int) []telemetry.SensorReading {
	r := rand.New(rand.NewSource(3))
	readings := make([]telemetry.SensorReading, 0, count)
	for i := 0; i < count; i++ {
		humidity := 48 + r.NormFloat64()
		readings = append(readings, telemetry.SensorReading{
			MachineID:   "CNC-7",
			Timestamp:   int64(1735000000000 + i*1000),
			Vibration:   10 + r.NormFloat64()*0.3,
			Temperature: 45 + r.NormFloat64()*0.5,
			Humidity:    &humidity,
		})
	}
	return readings
}

// fittedForest trains a small regressor on a linear wear profile so the
// prediction endpoint runs against a genuinely fitted model
func fittedForest(t *testing.T) *predictive.RandomForestRegressor {
	r := rand.New(rand.NewSource(11))
	matrix := make([][]float64, 0, 80)
	targets := make([]float64, 0, 80)
	for i := 0; i < 80; i++ {
		humidity := 40 + r.Float64()*20
		temperature := 40 + r.Float64()*10
		age := r.Float64() * 10
		quantity := 50 + r.Float64()*100
		matrix = append(matrix, []float64{humidity, temperature, age, quantity})
		targets = append(targets, 700-8*age-3*(temperature-40)+r.NormFloat64()*5)
	}
	forest := predictive.NewRandomForestRegressor()
	require.NoError(t, forest.Fit(matrix, targets, predictive.DefaultFeatures))
	return forest
}
