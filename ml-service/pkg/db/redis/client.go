/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package redis

import (
	"github.com/go-redsync/redsync/v4"

	"plantpulse/common/db"
	"plantpulse/common/db/redis"
	pulseErrors "plantpulse/common/errors"
	"plantpulse/ml-service/pkg/dto/ml"
)

type DBClient struct {
	client *redis.DBClient
}

var MLDbClientImpl MLDbInterface

type MLDbInterface interface {
	redis.CommonRedisDBInterface
	GetDbClient(dbConfig *db.DatabaseConfig) MLDbInterface

	GetRegistryIndex(modelType string) (ml.RegistryIndex, pulseErrors.PulseError)
	SaveRegistryIndex(index ml.RegistryIndex) pulseErrors.PulseError
	DeleteRegistryIndex(modelType string) pulseErrors.PulseError

	AddTrainingJob(job ml.TrainingJob) (string, pulseErrors.PulseError)
	UpdateTrainingJob(job ml.TrainingJob) pulseErrors.PulseError
	GetTrainingJob(name string) (ml.TrainingJob, pulseErrors.PulseError)
	GetTrainingJobs() ([]ml.TrainingJob, pulseErrors.PulseError)
}

func init() {
	MLDbClientImpl = &DBClient{}
}

func NewDBClient(dbConfig *db.DatabaseConfig) MLDbInterface {
	return MLDbClientImpl.GetDbClient(dbConfig)
}

func (dbClient *DBClient) GetDbClient(dbConfig *db.DatabaseConfig) MLDbInterface {
	dbc := redis.CreateDBClient(dbConfig)
	dbc.Logger = newLoggingClient()
	return &DBClient{client: dbc}
}

func (dbClient *DBClient) IncrMetricCounterBy(key string, value int64) (int64, pulseErrors.PulseError) {
	return dbClient.client.IncrMetricCounterBy(key, value)
}

func (dbClient *DBClient) SetMetricCounter(key string, value int64) pulseErrors.PulseError {
	return dbClient.client.SetMetricCounter(key, value)
}

func (dbClient *DBClient) GetMetricCounter(key string) (int64, pulseErrors.PulseError) {
	return dbClient.client.GetMetricCounter(key)
}

func (dbClient *DBClient) AcquireRedisLock(name string) (*redsync.Mutex, pulseErrors.PulseError) {
	return dbClient.client.AcquireRedisLock(name)
}
