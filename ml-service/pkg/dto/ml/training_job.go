/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ml

type JobStatus int

const (
	JobSubmitted JobStatus = iota
	JobLoadingDataset
	JobTraining
	JobCompleted
	JobFailed
)

var JobStatusMap = map[JobStatus]string{
	JobSubmitted:      "Submitted",
	JobLoadingDataset: "Loading Dataset",
	JobTraining:       "Training In Progress",
	JobCompleted:      "Completed",
	JobFailed:         "Failed",
}

func (js JobStatus) String() string {
	return [...]string{"Submitted", "LoadingDataset", "Training", "Completed", "Failed"}[js]
}

// TrainingJob tracks one asynchronous training run. The management service
// owns the goroutine, the record in the db is how callers poll progress.
type TrainingJob struct {
	Name              string    `json:"name"`
	ModelType         string    `json:"modelType"`
	Algorithm         string    `json:"algorithm"`
	StatusCode        JobStatus `json:"statusCode"`
	Message           string    `json:"msg,omitempty"`
	DatasetRows       int       `json:"datasetRows,omitempty"`
	RegisteredVersion string    `json:"registeredVersion,omitempty"`
	StartTime         int64     `json:"startTime,omitempty"`
	EndTime           int64     `json:"endTime,omitempty"`
	CreatedBy         string    `json:"createdBy,omitempty"`
}

// TrainingJobSummary is the REST projection of a job record
type TrainingJobSummary struct {
	Name              string `json:"name"`
	ModelType         string `json:"modelType"`
	Algorithm         string `json:"algorithm"`
	Status            string `json:"status"`
	Message           string `json:"msg,omitempty"`
	DatasetRows       int    `json:"datasetRows,omitempty"`
	RegisteredVersion string `json:"registeredVersion,omitempty"`
	StartTime         int64  `json:"startTime,omitempty"`
	EndTime           int64  `json:"endTime,omitempty"`
}

func (j TrainingJob) Summary() TrainingJobSummary {
	return TrainingJobSummary{
		Name:              j.Name,
		ModelType:         j.ModelType,
		Algorithm:         j.Algorithm,
		Status:            JobStatusMap[j.StatusCode],
		Message:           j.Message,
		DatasetRows:       j.DatasetRows,
		RegisteredVersion: j.RegisteredVersion,
		StartTime:         j.StartTime,
		EndTime:           j.EndTime,
	}
}
