/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package client

import (
	"github.com/go-redsync/redsync/v4"
	"plantpulse/common/db"
	"plantpulse/common/db/redis"
	pulseErrors "plantpulse/common/errors"
)

type DBClient struct {
	client *redis.DBClient
}

// DBClientImpl is swapped by tests to stub out redis.
var DBClientImpl DBClientInterface

// DBClientInterface is the redis surface the scoring side needs: metric
// counters, the distributed task-dedup lock and bus publish.
type DBClientInterface interface {
	redis.CommonRedisDBInterface
	PublishToRedisBus(topic string, msg interface{}) error
	GetDbClient(dbConfig *db.DatabaseConfig) DBClientInterface
}

func (rc *DBClient) GetDbClient(dbConfig *db.DatabaseConfig) DBClientInterface {
	dbc := redis.CreateDBClient(dbConfig)
	return &DBClient{client: dbc}
}

func NewDBClient(dbConfig *db.DatabaseConfig) DBClientInterface {
	return DBClientImpl.GetDbClient(dbConfig)
}

func (rc *DBClient) PublishToRedisBus(topic string, msg interface{}) error {
	conn := rc.client.Pool.Get()
	defer conn.Close()
	_, err := conn.Do("PUBLISH", topic, msg)
	return err
}

func (rc *DBClient) IncrMetricCounterBy(key string, value int64) (int64, pulseErrors.PulseError) {
	return rc.client.IncrMetricCounterBy(key, value)
}

func (rc *DBClient) SetMetricCounter(key string, value int64) pulseErrors.PulseError {
	return rc.client.SetMetricCounter(key, value)
}

func (rc *DBClient) GetMetricCounter(key string) (int64, pulseErrors.PulseError) {
	return rc.client.GetMetricCounter(key)
}

func (rc *DBClient) AcquireRedisLock(name string) (*redsync.Mutex, pulseErrors.PulseError) {
	return rc.client.AcquireRedisLock(name)
}

func init() {
	DBClientImpl = &DBClient{}
}
