/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package redis

import (
	"fmt"

	"github.com/gomodule/redigo/redis"
	"github.com/zeebo/errs"

	"plantpulse/common/db"
	redis2 "plantpulse/common/db/redis"
	pulseErrors "plantpulse/common/errors"
	"plantpulse/ml-service/pkg/dto/ml"
)

// db.MLModelIndex|<modelType> -> whole RegistryIndex as one JSON document
// db.MLModelIndex            -> set of model types with an index
//
// The index is written as a single value so concurrent scorers always read a
// point-in-time registry state. Mutations run under the registry lock taken
// one level up.
func buildRegistryIndexKey(modelType string) string {
	return db.MLModelIndex + "|" + modelType
}

func (dbClient *DBClient) GetRegistryIndex(
	modelType string,
) (ml.RegistryIndex, pulseErrors.PulseError) {
	lc := dbClient.client.Logger

	conn := dbClient.client.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error getting registry index for model type %s", modelType)

	index := ml.RegistryIndex{ModelType: modelType, Versions: []ml.ModelVersion{}}
	object, err := redis.Bytes(conn.Do("GET", buildRegistryIndexKey(modelType)))
	if errs.Is(err, redis.ErrNil) {
		// Nothing registered yet for this type
		return index, nil
	}
	if err != nil {
		lc.Errorf("%s: %v", errorMessage, err)
		return index, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}

	if err := redis2.UnmarshalObject(object, &index); err != nil {
		lc.Errorf("%s: error unmarshaling index document: %v", errorMessage, err)
		return index, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeServerError, errorMessage)
	}
	return index, nil
}

func (dbClient *DBClient) SaveRegistryIndex(index ml.RegistryIndex) pulseErrors.PulseError {
	lc := dbClient.client.Logger

	conn := dbClient.client.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error saving registry index for model type %s", index.ModelType)

	object, err := redis2.MarshalObject(index)
	if err != nil {
		lc.Errorf("%s: error marshaling index document: %v", errorMessage, err)
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeServerError, errorMessage)
	}

	_ = conn.Send("MULTI")
	_ = conn.Send("SET", buildRegistryIndexKey(index.ModelType), object)
	_ = conn.Send("SADD", db.MLModelIndex, index.ModelType)

	if _, err = conn.Do("EXEC"); err != nil {
		lc.Errorf("%s: %v", errorMessage, err)
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}
	return nil
}

func (dbClient *DBClient) DeleteRegistryIndex(modelType string) pulseErrors.PulseError {
	lc := dbClient.client.Logger

	conn := dbClient.client.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error deleting registry index for model type %s", modelType)

	_ = conn.Send("MULTI")
	_ = conn.Send("DEL", buildRegistryIndexKey(modelType))
	_ = conn.Send("SREM", db.MLModelIndex, modelType)

	if _, err := conn.Do("EXEC"); err != nil {
		lc.Errorf("%s: %v", errorMessage, err)
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError, errorMessage)
	}
	return nil
}
