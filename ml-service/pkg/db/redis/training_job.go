/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package redis

import (
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"

	"plantpulse/common/db"
	redis2 "plantpulse/common/db/redis"
	pulseErrors "plantpulse/common/errors"
	"plantpulse/ml-service/pkg/dto/ml"
)

// db.MLTrainingJob|<jobName> -> job record
// db.MLTrainingJob           -> set of all job keys
func buildTrainingJobKey(name string) string {
	return db.MLTrainingJob + "|" + name
}

func (dbClient *DBClient) AddTrainingJob(job ml.TrainingJob) (string, pulseErrors.PulseError) {
	lc := dbClient.client.Logger

	conn := dbClient.client.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error adding training job %s", job.Name)

	jobKey := buildTrainingJobKey(job.Name)
	if err := redis2.ValidateKeyExists(conn, jobKey); err == nil {
		return "", pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeConflict,
			fmt.Sprintf("Training job %s already exists", job.Name))
	} else if !errors.Is(err, db.ErrNotFound) {
		lc.Errorf("%s: %v", errorMessage, err)
		return "", pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}

	object, err := redis2.MarshalObject(job)
	if err != nil {
		lc.Errorf("%s: error marshaling job: %v", errorMessage, err)
		return "", pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeServerError, errorMessage)
	}

	_ = conn.Send("MULTI")
	_ = conn.Send("SET", jobKey, object)
	_ = conn.Send("SADD", db.MLTrainingJob, jobKey)

	if _, err = conn.Do("EXEC"); err != nil {
		lc.Errorf("%s: %v", errorMessage, err)
		return "", pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}
	return job.Name, nil
}

func (dbClient *DBClient) UpdateTrainingJob(job ml.TrainingJob) pulseErrors.PulseError {
	lc := dbClient.client.Logger

	conn := dbClient.client.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error updating training job %s", job.Name)

	jobKey := buildTrainingJobKey(job.Name)
	if err := redis2.ValidateKeyExists(conn, jobKey); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
				fmt.Sprintf("Training job %s not found", job.Name))
		}
		lc.Errorf("%s: %v", errorMessage, err)
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}

	object, err := redis2.MarshalObject(job)
	if err != nil {
		lc.Errorf("%s: error marshaling job: %v", errorMessage, err)
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeServerError, errorMessage)
	}

	if _, err = conn.Do("SET", jobKey, object); err != nil {
		lc.Errorf("%s: %v", errorMessage, err)
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}
	return nil
}

func (dbClient *DBClient) GetTrainingJob(name string) (ml.TrainingJob, pulseErrors.PulseError) {
	lc := dbClient.client.Logger

	conn := dbClient.client.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error getting training job %s", name)

	var job ml.TrainingJob
	err := redis2.GetObjectById(conn, buildTrainingJobKey(name), redis2.UnmarshalObject, &job)
	if errors.Is(err, db.ErrNotFound) {
		return job, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
			fmt.Sprintf("Training job %s not found", name))
	}
	if err != nil {
		lc.Errorf("%s: %v", errorMessage, err)
		return job, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}
	return job, nil
}

func (dbClient *DBClient) GetTrainingJobs() ([]ml.TrainingJob, pulseErrors.PulseError) {
	lc := dbClient.client.Logger

	conn := dbClient.client.Pool.Get()
	defer conn.Close()

	errorMessage := "Error getting training jobs"

	objects, err := redis2.GetObjectsByValue(conn, db.MLTrainingJob)
	if err != nil && !errors.Is(err, redis.ErrNil) {
		lc.Errorf("%s: %v", errorMessage, err)
		return nil, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}

	jobs := make([]ml.TrainingJob, 0, len(objects))
	for _, object := range objects {
		if object == nil {
			continue
		}
		var job ml.TrainingJob
		if err := redis2.UnmarshalObject(object, &job); err != nil {
			lc.Errorf("%s: error unmarshaling job record: %v", errorMessage, err)
			return nil, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeServerError, errorMessage)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
