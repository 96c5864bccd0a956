/*******************************************************************************
 * Copyright 2018 Redis Labs Inc.
 * (c) Copyright 2020-2025 BMC Software, Inc.
 *
 * Contributors: BMC Software, Inc. - BMC Helix Edge
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License
 * is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
 * or implied. See the License for the specific language governing permissions and limitations under
 * the License.
 *******************************************************************************/
package redis

import (
	"encoding/json"
	"fmt"

	"github.com/gomodule/redigo/redis"

	db2 "plantpulse/common/db"
)

type unmarshalFunc func(in []byte, out interface{}) (err error)

func MarshalObject(in interface{}) (out []byte, err error) {
	return json.Marshal(in)
}

func UnmarshalObject(in []byte, out interface{}) (err error) {
	return json.Unmarshal(in, out)
}

func GetObjectById(conn redis.Conn, id string, unmarshal unmarshalFunc, out interface{}) error {
	object, err := redis.Bytes(conn.Do("GET", id))
	if err == redis.ErrNil {
		return db2.ErrNotFound
	} else if err != nil {
		return err
	}

	return unmarshal(object, out)
}

func GetObjectsByValue(conn redis.Conn, v string) ([][]byte, error) {
	ids, err := redis.Values(conn.Do("SMEMBERS", v))
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}

	objects, err := redis.ByteSlices(conn.Do("MGET", ids...))
	if err != nil {
		return nil, err
	}

	return objects, nil
}

// GetObjectsByRevRange retrieves the entries for keys enumerated in a sorted set.
// The entries are retrieved in the reverse sorted set order.
func GetObjectsByRevRange(conn redis.Conn, key string, start int, end int) ([][]byte, error) {
	return GetObjectsBySomeRange(conn, "ZREVRANGE", key, start, end)
}

// GetObjectsBySomeRange retrieves the entries for keys enumerated in a sorted set using the specified Redis range
// command (i.e. RANGE, REVRANGE). The entries are retrieved in the order specified by the supplied Redis command.
func GetObjectsBySomeRange(conn redis.Conn, command string, key string, start int, end int) ([][]byte, error) {
	ids, err := redis.Values(conn.Do(command, key, start, end))
	if err != nil && err != redis.ErrNil {
		return nil, err
	}

	var result [][]byte
	if len(ids) > 0 {
		result, err = redis.ByteSlices(conn.Do("MGET", ids...))
		if err != nil {
			return nil, err
		}
	}

	var objects [][]byte
	for _, obj := range result {
		if obj != nil {
			objects = append(objects, obj)
		}
	}

	return objects, nil

}

func ValidateKeyExists(conn redis.Conn, key string) error {
	count, err := redis.Int(conn.Do("EXISTS", key))
	if err != nil {
		return err
	}

	if count == 1 {
		return nil
	}
	return db2.ErrNotFound
}

// GetObjectsByPattern retrieves all objects matching a given key pattern.
func GetObjectsByPattern(conn redis.Conn, pattern string) ([][]byte, error) {
	var cursor int64
	var keys []string

	for {
		// SCAN the keys based on the pattern
		reply, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", pattern, "COUNT", 10))
		if err != nil {
			return nil, fmt.Errorf("error scanning keys with pattern %s: %v", pattern, err)
		}

		// Unmarshal cursor and keys
		cursor, _ = redis.Int64(reply[0], nil)
		foundKeys, _ := redis.Strings(reply[1], nil)
		keys = append(keys, foundKeys...)

		// Stop if we've iterated over all keys
		if cursor == 0 {
			break
		}
	}

	// Return empty if no keys found
	if len(keys) == 0 {
		return nil, nil
	}

	// Fetch objects by the found keys
	objects, err := redis.ByteSlices(conn.Do("MGET", redis.Args{}.AddFlat(keys)...))
	if err != nil {
		return nil, fmt.Errorf("error fetching objects for keys %v: %v", keys, err)
	}

	return objects, nil
}
