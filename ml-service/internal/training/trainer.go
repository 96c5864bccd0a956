/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package training

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"gonum.org/v1/gonum/stat"

	pulseErrors "plantpulse/common/errors"
	"plantpulse/ml-service/pkg/db/redis"
	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/ensemble"
	"plantpulse/ml-service/pkg/predictive"
	"plantpulse/ml-service/pkg/registry"
	"plantpulse/ml-service/pkg/tsdb"
)

const DefaultTargetColumn = "MTTF"

// TrainingRequest is the payload of a train submission. ModelType defaults
// to anomaly detection, Algorithm to the full ensemble; the target column
// only applies to predictive training.
type TrainingRequest struct {
	Name          string  `json:"name,omitempty"`
	ModelType     string  `json:"modelType,omitempty"`
	Algorithm     string  `json:"algorithm,omitempty"`
	Contamination float64 `json:"contamination,omitempty"`
	TargetColumn  string  `json:"targetColumn,omitempty"`
	Description   string  `json:"description,omitempty"`
	CreatedBy     string  `json:"-"`
}

// TrainingService fits models on historical or uploaded data and hands the
// result to the model registry. Training runs in a goroutine owned by this
// service; live scoring is only affected when a version is promoted.
type TrainingService struct {
	service                   interfaces.ApplicationService
	lc                        logger.LoggingClient
	dbClient                  redis.MLDbInterface
	modelRegistry             registry.RegistryInterface
	store                     tsdb.ReadingStoreInterface
	modelTypesWithRunningJobs map[string]struct{}
	runningJobsMutex          sync.Mutex
}

func NewTrainingService(
	service interfaces.ApplicationService,
	dbClient redis.MLDbInterface,
	modelRegistry registry.RegistryInterface,
	store tsdb.ReadingStoreInterface,
) *TrainingService {
	trainingService := new(TrainingService)
	trainingService.service = service
	trainingService.lc = service.LoggingClient()
	trainingService.dbClient = dbClient
	trainingService.modelRegistry = modelRegistry
	trainingService.store = store
	trainingService.modelTypesWithRunningJobs = make(map[string]struct{})
	return trainingService
}

// SubmitTrainingJob validates the request, records the job and starts the
// training run in the background. Only one job per model type runs at a
// time. An uploaded dataset that is too small is rejected here, before any
// job record or registry write happens.
func (ts *TrainingService) SubmitTrainingJob(request TrainingRequest, dataset *Dataset) (ml.TrainingJob, pulseErrors.PulseError) {
	var job ml.TrainingJob

	request, err := ts.normalizeRequest(request)
	if err != nil {
		return job, err
	}
	if dataset != nil && len(dataset.Rows) < MinTrainingRows {
		return job, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Insufficient training data. Need at least %d samples, got %d", MinTrainingRows, len(dataset.Rows)))
	}

	ts.runningJobsMutex.Lock()
	if _, found := ts.modelTypesWithRunningJobs[request.ModelType]; found {
		ts.runningJobsMutex.Unlock()
		return job, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeConflict,
			fmt.Sprintf("Training job for model type: %s already running, Please wait for the job to complete", request.ModelType))
	}

	job = ml.TrainingJob{
		Name:       request.Name,
		ModelType:  request.ModelType,
		Algorithm:  request.Algorithm,
		StatusCode: ml.JobSubmitted,
		StartTime:  time.Now().Unix(),
		CreatedBy:  request.CreatedBy,
	}
	if dataset != nil {
		job.DatasetRows = len(dataset.Rows)
	}
	if _, addErr := ts.dbClient.AddTrainingJob(job); addErr != nil {
		ts.runningJobsMutex.Unlock()
		ts.lc.Error(addErr.Error())
		return job, addErr
	}
	ts.modelTypesWithRunningJobs[request.ModelType] = struct{}{}
	ts.runningJobsMutex.Unlock()

	go ts.runJob(job, request, dataset)

	return job, nil
}

func (ts *TrainingService) runJob(job ml.TrainingJob, request TrainingRequest, dataset *Dataset) {
	defer func() {
		ts.runningJobsMutex.Lock()
		delete(ts.modelTypesWithRunningJobs, request.ModelType)
		ts.runningJobsMutex.Unlock()
	}()

	ts.lc.Infof("Start executing training job %s (model type: %s)", job.Name, job.ModelType)

	job.StatusCode = ml.JobLoadingDataset
	_ = ts.dbClient.UpdateTrainingJob(job)

	if dataset == nil {
		readings, err := ts.store.RecentReadings(context.Background(), DefaultHistoryRows)
		if err != nil {
			ts.failJob(&job, "Error loading the training dataset from the telemetry store: "+err.Error())
			return
		}
		dataset = FromReadings(readings)
	}
	job.DatasetRows = len(dataset.Rows)
	if job.DatasetRows < MinTrainingRows {
		ts.failJob(&job, fmt.Sprintf("Insufficient training data. Need at least %d samples, got %d", MinTrainingRows, job.DatasetRows))
		return
	}
	if dataset.ImputedCells > 0 {
		ts.lc.Warnf("Training dataset for job %s had %d missing cells, imputed with column means", job.Name, dataset.ImputedCells)
	}

	job.StatusCode = ml.JobTraining
	_ = ts.dbClient.UpdateTrainingJob(job)

	var version ml.ModelVersion
	var trainErr pulseErrors.PulseError
	if request.ModelType == ml.ModelTypePredictive {
		version, trainErr = ts.trainPredictive(request, dataset)
	} else {
		version, trainErr = ts.trainAnomaly(request, dataset)
	}
	if trainErr != nil {
		ts.failJob(&job, trainErr.Message())
		return
	}

	job.StatusCode = ml.JobCompleted
	job.RegisteredVersion = version.Version
	job.Message = fmt.Sprintf("Training completed and model version %s registered", version.Version)
	job.EndTime = time.Now().Unix()
	if err := ts.dbClient.UpdateTrainingJob(job); err != nil {
		ts.lc.Errorf("Error updating the completed training job %s: %v", job.Name, err)
	}
	ts.lc.Infof("Training job %s completed, registered model version %s (status: %s)", job.Name, version.Version, version.Status)
}

// trainAnomaly fits the anomaly detector on the dataset's feature columns
// and registers the result. The new version always lands in STAGING; an
// operator promotes it.
func (ts *TrainingService) trainAnomaly(request TrainingRequest, dataset *Dataset) (ml.ModelVersion, pulseErrors.PulseError) {
	var version ml.ModelVersion

	detector := ensemble.NewEnsembleDetector()
	if request.Algorithm == ensemble.AlgorithmIsolationForest {
		// legacy single-detector variant
		detector.Outlier = nil
		detector.Boundary = nil
		detector.Weights = map[string]float64{ensemble.AlgorithmIsolationForest: 1.0}
	}
	if request.Contamination > 0 {
		detector.Contamination = request.Contamination
		detector.Forest.Contamination = request.Contamination
		if detector.Outlier != nil {
			detector.Outlier.Contamination = request.Contamination
		}
		if detector.Boundary != nil {
			detector.Boundary.Nu = request.Contamination
		}
	}

	// a target column in an uploaded dataset must never leak into the
	// anomaly feature set
	featureNames := dataset.FeatureColumns(DefaultTargetColumn, request.TargetColumn)
	featureMatrix, err := dataset.Select(featureNames)
	if err != nil {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest, err.Error())
	}
	if err := detector.Fit(featureMatrix, featureNames); err != nil {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeModel, "Training failed: "+err.Error())
	}
	for _, warning := range detector.FitWarnings {
		ts.lc.Warn(warning)
	}

	metrics := ts.evaluateDetector(detector, featureMatrix)

	description := request.Description
	if description == "" {
		description = "Ensemble anomaly detector combining isolation forest, local outlier factor and one-class boundary voting"
		if request.Algorithm == ensemble.AlgorithmIsolationForest {
			description = "Isolation forest anomaly detector"
		}
	}
	return ts.modelRegistry.Register(registry.RegisterRequest{
		ModelType:   request.ModelType,
		Algorithm:   request.Algorithm,
		Bump:        ml.BumpMinor,
		Metrics:     metrics,
		Description: description,
		CreatedBy:   request.CreatedBy,
		Ensemble:    detector,
	})
}

// trainPredictive fits the MTTF random forest on an 80/20 split and
// registers it with the held-out validation metrics.
func (ts *TrainingService) trainPredictive(request TrainingRequest, dataset *Dataset) (ml.ModelVersion, pulseErrors.PulseError) {
	var version ml.ModelVersion

	targets, found := dataset.Column(request.TargetColumn)
	if !found {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Target column %q not found in the dataset", request.TargetColumn))
	}
	featureNames := dataset.FeatureColumns(request.TargetColumn)
	featureMatrix, err := dataset.Select(featureNames)
	if err != nil {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest, err.Error())
	}

	trainRows, testRows := splitRows(len(featureMatrix))
	trainX, trainY := project(featureMatrix, targets, trainRows)
	testX, testY := project(featureMatrix, targets, testRows)

	forest := predictive.NewRandomForestRegressor()
	if err := forest.Fit(trainX, trainY, featureNames); err != nil {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeModel, "Training failed: "+err.Error())
	}
	mae, rmse, r2, err := forest.Evaluate(testX, testY)
	if err != nil {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeModel, "Model validation failed: "+err.Error())
	}

	return ts.modelRegistry.Register(registry.RegisterRequest{
		ModelType: request.ModelType,
		Algorithm: predictive.AlgorithmRandomForestRegressor,
		Bump:      ml.BumpMinor,
		Metrics: ml.ModelMetrics{
			TrainingSamples: len(trainX),
			MAE:             mae,
			RMSE:            rmse,
			R2:              r2,
		},
		Description: fmt.Sprintf("MTTF prediction model. R²=%.4f, MAE=%.2f", r2, mae),
		CreatedBy:   request.CreatedBy,
		Forest:      forest,
	})
}

// ResetAnomalyModel refits the baseline isolation forest from recent
// telemetry, registers it as a new major version and promotes it straight to
// ACTIVE. This is the operator's "start over" action.
func (ts *TrainingService) ResetAnomalyModel(createdBy string) (ml.ModelVersion, pulseErrors.PulseError) {
	var version ml.ModelVersion

	readings, err := ts.store.RecentReadings(context.Background(), DefaultHistoryRows)
	if err != nil {
		ts.lc.Errorf("Error loading recent readings for the model reset: %v", err)
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError,
			"Error loading recent telemetry for the model reset")
	}
	dataset := FromReadings(readings)
	if len(dataset.Rows) < MinTrainingRows {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Insufficient training data. Need at least %d samples, got %d", MinTrainingRows, len(dataset.Rows)))
	}

	detector := ensemble.NewEnsembleDetector()
	detector.Outlier = nil
	detector.Boundary = nil
	detector.Weights = map[string]float64{ensemble.AlgorithmIsolationForest: 1.0}

	featureMatrix, selectErr := dataset.Select(dataset.Columns)
	if selectErr != nil {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeServerError, selectErr.Error())
	}
	if err := detector.Fit(featureMatrix, dataset.Columns); err != nil {
		return version, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeModel, "Model reset failed: "+err.Error())
	}

	version, registerErr := ts.modelRegistry.Register(registry.RegisterRequest{
		ModelType:   ml.ModelTypeAnomalyDetection,
		Algorithm:   ensemble.AlgorithmIsolationForest,
		Bump:        ml.BumpMajor,
		Metrics:     ts.evaluateDetector(detector, featureMatrix),
		Description: "Baseline isolation forest refit from recent telemetry",
		CreatedBy:   createdBy,
		Ensemble:    detector,
	})
	if registerErr != nil {
		return version, registerErr
	}
	if promoteErr := ts.modelRegistry.Promote(ml.ModelTypeAnomalyDetection, version.Version); promoteErr != nil {
		return version, promoteErr
	}
	version.Status = ml.ModelStatusActive
	ts.lc.Infof("Model reset complete, version %s trained on %d readings and promoted", version.Version, len(dataset.Rows))
	return version, nil
}

// GetJobs returns all training job records, most recently started first
func (ts *TrainingService) GetJobs() ([]ml.TrainingJob, pulseErrors.PulseError) {
	jobs, err := ts.dbClient.GetTrainingJobs()
	if err != nil {
		ts.lc.Errorf("Error getting training jobs: %v", err)
		return jobs, err
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime > jobs[j].StartTime
	})
	return jobs, nil
}

func (ts *TrainingService) GetJob(name string) (ml.TrainingJob, pulseErrors.PulseError) {
	job, err := ts.dbClient.GetTrainingJob(name)
	if err != nil {
		ts.lc.Error(err.Error())
		return job, err
	}
	return job, nil
}

// IsJobRunning reports whether a training job currently holds the run lock
// for the model type
func (ts *TrainingService) IsJobRunning(modelType string) bool {
	ts.runningJobsMutex.Lock()
	defer ts.runningJobsMutex.Unlock()
	_, running := ts.modelTypesWithRunningJobs[modelType]
	return running
}

func (ts *TrainingService) normalizeRequest(request TrainingRequest) (TrainingRequest, pulseErrors.PulseError) {
	if request.ModelType == "" {
		request.ModelType = ml.ModelTypeAnomalyDetection
	}
	switch request.ModelType {
	case ml.ModelTypeAnomalyDetection, ml.ModelTypePredictive:
	default:
		return request, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Unsupported model type for training: %s", request.ModelType))
	}
	if request.ModelType == ml.ModelTypePredictive {
		request.Algorithm = predictive.AlgorithmRandomForestRegressor
		if request.TargetColumn == "" {
			request.TargetColumn = DefaultTargetColumn
		}
	} else {
		switch strings.ToLower(strings.TrimSpace(request.Algorithm)) {
		case "", ensemble.AlgorithmEnsemble:
			request.Algorithm = ensemble.AlgorithmEnsemble
		case ensemble.AlgorithmIsolationForest:
			request.Algorithm = ensemble.AlgorithmIsolationForest
		default:
			return request, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
				fmt.Sprintf("Unsupported algorithm for anomaly training: %s", request.Algorithm))
		}
	}
	if request.Name == "" {
		request.Name = fmt.Sprintf("%s_%d", request.ModelType, time.Now().Unix())
	}
	return request, nil
}

// evaluateDetector scores a stride sample of the training matrix back
// through the fitted detector to capture the anomaly rate and raw-score
// distribution without a full quadratic pass on large datasets.
func (ts *TrainingService) evaluateDetector(detector *ensemble.EnsembleDetector, featureMatrix [][]float64) ml.ModelMetrics {
	const maxEvaluationRows = 1000

	metrics := ml.ModelMetrics{TrainingSamples: len(featureMatrix)}
	stride := 1
	if len(featureMatrix) > maxEvaluationRows {
		stride = (len(featureMatrix) + maxEvaluationRows - 1) / maxEvaluationRows
	}
	rawScores := make([]float64, 0, maxEvaluationRows)
	anomalies := 0
	for i := 0; i < len(featureMatrix); i += stride {
		prediction, err := detector.Predict(featureMatrix[i])
		if err != nil {
			continue
		}
		rawScores = append(rawScores, prediction.RawScore)
		if prediction.IsAnomaly {
			anomalies++
		}
	}
	if len(rawScores) == 0 {
		return metrics
	}
	metrics.AnomalyRate = float64(anomalies) / float64(len(rawScores))
	mean, std := stat.MeanStdDev(rawScores, nil)
	metrics.ScoreMean = mean
	metrics.ScoreStd = std
	return metrics
}

func (ts *TrainingService) failJob(job *ml.TrainingJob, message string) {
	ts.lc.Errorf("Training job %s failed: %s", job.Name, message)
	job.StatusCode = ml.JobFailed
	job.Message = message
	job.EndTime = time.Now().Unix()
	if err := ts.dbClient.UpdateTrainingJob(*job); err != nil {
		ts.lc.Errorf("Error updating the failed training job %s: %v", job.Name, err)
	}
}

// splitRows is the deterministic 80/20 train/validation split
func splitRows(total int) (train []int, test []int) {
	indexes := rand.New(rand.NewSource(predictive.DefaultRandomState)).Perm(total)
	testCount := total / 5
	if testCount == 0 && total > 1 {
		testCount = 1
	}
	return indexes[testCount:], indexes[:testCount]
}

func project(featureMatrix [][]float64, targets []float64, rows []int) ([][]float64, []float64) {
	matrix := make([][]float64, len(rows))
	projected := make([]float64, len(rows))
	for i, row := range rows {
		matrix[i] = featureMatrix[row]
		projected[i] = targets[row]
	}
	return matrix, projected
}
