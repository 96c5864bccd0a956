/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package db

import (
	"errors"
	"time"
)

const (

	// Model registry redis storage keys, the registry index is kept per model type
	MLModelIndex    = "pp:ml:reg"
	MLModelLock     = "pp:ml:reg:lock"
	MLTrainingJob   = "pp:ml:trgjob"
	MLScoreSnapshot = "pp:ml:score"

	// Score calibration snapshots written by the training pipeline
	ScoreCalibration = "pp:ml:cal"

	// Task auto-creation takes a per equipment lock so the dedup window check is serialized
	TaskCreationLock = "pp:task:lock"

	ServiceConfig = "pp:cfg"
	MetricCounter = "pp:mc"
)

var (
	ErrNotFound         = errors.New("item not found")
	ErrNotUnique        = errors.New("resource already exists")
	ErrNameEmpty        = errors.New("name is required")
	ErrInternal         = errors.New("internal error")
	ErrMaxLimitExceeded = errors.New("maximum allowed limit exceeded for the entity")
)

func MakeTimestamp() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
