/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package registry

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"plantpulse/common/db"
	pulseErrors "plantpulse/common/errors"
	"plantpulse/ml-service/pkg/db/redis"
	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/ensemble"
	"plantpulse/ml-service/pkg/predictive"
)

// abTrafficTolerance absorbs float drift when validating that a traffic
// split sums to 100
const abTrafficTolerance = 0.01

// randFloat is a seam so A/B selection tests can fix the draw
var randFloat = rand.Float64

// RegisterRequest carries one trained model into the registry. Exactly one
// of Ensemble/Forest must be fitted; Algorithm, Hyperparameters and Features
// default from the payload when left empty.
type RegisterRequest struct {
	ModelType       string
	Algorithm       string
	Bump            string
	Hyperparameters map[string]interface{}
	Features        []string
	Metrics         ml.ModelMetrics
	Description     string
	CreatedBy       string

	Ensemble *ensemble.EnsembleDetector
	Forest   *predictive.RandomForestRegressor
}

// LoadedModel is a deserialized, ready-to-score model together with its
// registry entry
type LoadedModel struct {
	Version  ml.ModelVersion
	Ensemble *ensemble.EnsembleDetector
	Forest   *predictive.RandomForestRegressor
}

type RegistryInterface interface {
	Register(request RegisterRequest) (ml.ModelVersion, pulseErrors.PulseError)
	Promote(modelType string, version string) pulseErrors.PulseError
	Rollback(modelType string, toVersion string) (string, pulseErrors.PulseError)
	GetActive(modelType string) (*LoadedModel, pulseErrors.PulseError)
	GetForABTest(modelType string) (*LoadedModel, pulseErrors.PulseError)
	SetABTraffic(modelType string, allocations map[string]float64) pulseErrors.PulseError
	Delete(modelType string, version string, force bool) pulseErrors.PulseError
	Deprecate(modelType string, version string) pulseErrors.PulseError
	List(modelType string) (ml.RegistrySummary, pulseErrors.PulseError)
}

// ModelRegistry owns the model lifecycle: semantic versioning, STAGING ->
// ACTIVE promotion with automatic archival, rollback and A/B traffic splits.
// All writes go through a per-model-type redis lock; the index is saved as
// one document so a promote is all-or-nothing.
type ModelRegistry struct {
	dbClient  redis.MLDbInterface
	artifacts ArtifactStoreInterface
	lc        logger.LoggingClient
}

func NewModelRegistry(
	dbClient redis.MLDbInterface,
	artifacts ArtifactStoreInterface,
	lc logger.LoggingClient,
) *ModelRegistry {
	return &ModelRegistry{
		dbClient:  dbClient,
		artifacts: artifacts,
		lc:        lc,
	}
}

func registryLockName(modelType string) string {
	return db.MLModelLock + "|" + modelType
}

// Register persists the artifact, then appends a new STAGING version to the
// index. The artifact write happens first so a registry entry never points
// at a payload that does not exist.
func (r *ModelRegistry) Register(request RegisterRequest) (ml.ModelVersion, pulseErrors.PulseError) {
	var registered ml.ModelVersion

	if !ml.IsValidModelType(request.ModelType) {
		return registered, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Invalid model type %s", request.ModelType))
	}
	if err := validatePayload(request); err != nil {
		return registered, err
	}

	mutex, lockErr := r.dbClient.AcquireRedisLock(registryLockName(request.ModelType))
	if lockErr != nil {
		return registered, lockErr
	}
	defer mutex.Unlock()

	index, err := r.dbClient.GetRegistryIndex(request.ModelType)
	if err != nil {
		return registered, err
	}

	version, verErr := nextVersion(latestVersion(index.Versions), request.Bump)
	if verErr != nil {
		return registered, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest, verErr.Error())
	}

	artifact := ModelArtifact{
		FormatVersion: ArtifactFormatVersion,
		ModelType:     request.ModelType,
		Algorithm:     algorithmFor(request),
		SavedAt:       db.MakeTimestamp(),
		Ensemble:      request.Ensemble,
		Forest:        request.Forest,
	}
	checksum, saveErr := r.artifacts.Save(artifact, version)
	if saveErr != nil {
		r.lc.Errorf("Error saving %s model artifact v%s: %v", request.ModelType, version, saveErr)
		return registered, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError,
			fmt.Sprintf("Error persisting model artifact for %s", request.ModelType))
	}

	registered = ml.ModelVersion{
		Version:           version,
		ModelType:         request.ModelType,
		Status:            ml.ModelStatusStaging,
		Algorithm:         artifact.Algorithm,
		Hyperparameters:   hyperparametersFor(request),
		Features:          featuresFor(request),
		Metrics:           request.Metrics,
		ModelChecksum:     checksum,
		TrafficPercentage: 0,
		CreatedAt:         db.MakeTimestamp(),
		CreatedBy:         request.CreatedBy,
		Description:       request.Description,
	}
	if metaErr := r.artifacts.SaveMetadata(registered); metaErr != nil {
		r.lc.Errorf("Error saving %s model metadata v%s: %v", request.ModelType, version, metaErr)
		return ml.ModelVersion{}, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError,
			fmt.Sprintf("Error persisting model metadata for %s", request.ModelType))
	}

	index.ModelType = request.ModelType
	index.Versions = append(index.Versions, registered)
	index.Modified = db.MakeTimestamp()
	if err := r.dbClient.SaveRegistryIndex(index); err != nil {
		return ml.ModelVersion{}, err
	}

	r.lc.Infof("registered %s model v%s (%s) in STAGING", request.ModelType, version, artifact.Algorithm)
	return registered, nil
}

// Promote makes the version ACTIVE with 100% traffic and archives whichever
// version was active before. Promoting the already-active version is a no-op
// that still rewrites traffic to 100.
func (r *ModelRegistry) Promote(modelType string, version string) pulseErrors.PulseError {
	mutex, lockErr := r.dbClient.AcquireRedisLock(registryLockName(modelType))
	if lockErr != nil {
		return lockErr
	}
	defer mutex.Unlock()

	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return err
	}
	if err := promoteInIndex(&index, version); err != nil {
		return err
	}
	if err := r.dbClient.SaveRegistryIndex(index); err != nil {
		return err
	}

	r.lc.Infof("promoted %s model v%s to ACTIVE", modelType, version)
	return nil
}

// Rollback promotes toVersion, or when empty the most recently created
// ARCHIVED version. Returns the version that became active.
func (r *ModelRegistry) Rollback(modelType string, toVersion string) (string, pulseErrors.PulseError) {
	mutex, lockErr := r.dbClient.AcquireRedisLock(registryLockName(modelType))
	if lockErr != nil {
		return "", lockErr
	}
	defer mutex.Unlock()

	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return "", err
	}

	if toVersion == "" {
		var target *ml.ModelVersion
		for i := range index.Versions {
			candidate := &index.Versions[i]
			if candidate.Status != ml.ModelStatusArchived {
				continue
			}
			if target == nil || candidate.CreatedAt > target.CreatedAt {
				target = candidate
			}
		}
		if target == nil {
			return "", pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
				fmt.Sprintf("No archived %s model version to roll back to", modelType))
		}
		toVersion = target.Version
	}

	if err := promoteInIndex(&index, toVersion); err != nil {
		return "", err
	}
	if err := r.dbClient.SaveRegistryIndex(index); err != nil {
		return "", err
	}

	r.lc.Infof("rolled back %s model to v%s", modelType, toVersion)
	return toVersion, nil
}

// GetActive loads the ACTIVE version's model. (nil, nil) means no version is
// active yet and the caller should fall back to heuristic scoring.
func (r *ModelRegistry) GetActive(modelType string) (*LoadedModel, pulseErrors.PulseError) {
	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return nil, err
	}
	active := index.Active()
	if active == nil {
		return nil, nil
	}
	return r.loadVersion(*active)
}

// GetForABTest draws a version weighted by the traffic percentages. With no
// traffic allocations in place it serves the ACTIVE version.
func (r *ModelRegistry) GetForABTest(modelType string) (*LoadedModel, pulseErrors.PulseError) {
	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return nil, err
	}

	var candidates []ml.ModelVersion
	for _, version := range index.Versions {
		if version.TrafficPercentage > 0 {
			candidates = append(candidates, version)
		}
	}
	if len(candidates) == 0 {
		active := index.Active()
		if active == nil {
			return nil, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
				fmt.Sprintf("No active %s model version", modelType))
		}
		return r.loadVersion(*active)
	}

	draw := randFloat() * 100
	cumulative := 0.0
	for _, candidate := range candidates {
		cumulative += candidate.TrafficPercentage
		if draw <= cumulative {
			return r.loadVersion(candidate)
		}
	}
	// splits that do not quite reach the draw fall through to the last slice
	return r.loadVersion(candidates[len(candidates)-1])
}

// SetABTraffic replaces the traffic split. The allocations must sum to 100
// and every referenced version must exist; versions not mentioned drop to 0.
func (r *ModelRegistry) SetABTraffic(
	modelType string,
	allocations map[string]float64,
) pulseErrors.PulseError {
	total := 0.0
	for _, percentage := range allocations {
		if percentage < 0 {
			return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
				"Traffic percentages cannot be negative")
		}
		total += percentage
	}
	if math.Abs(total-100) > abTrafficTolerance {
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Traffic percentages must sum to 100, got %.2f", total))
	}

	mutex, lockErr := r.dbClient.AcquireRedisLock(registryLockName(modelType))
	if lockErr != nil {
		return lockErr
	}
	defer mutex.Unlock()

	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return err
	}
	for version := range allocations {
		if index.Find(version) == nil {
			return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
				fmt.Sprintf("Model version %s not found for %s", version, modelType))
		}
	}

	for i := range index.Versions {
		index.Versions[i].TrafficPercentage = allocations[index.Versions[i].Version]
	}
	index.Modified = db.MakeTimestamp()
	if err := r.dbClient.SaveRegistryIndex(index); err != nil {
		return err
	}

	r.lc.Infof("updated %s A/B traffic split across %d versions", modelType, len(allocations))
	return nil
}

// Delete removes a version and its artifact. The ACTIVE version is protected
// unless force is set.
func (r *ModelRegistry) Delete(modelType string, version string, force bool) pulseErrors.PulseError {
	mutex, lockErr := r.dbClient.AcquireRedisLock(registryLockName(modelType))
	if lockErr != nil {
		return lockErr
	}
	defer mutex.Unlock()

	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return err
	}
	entry := index.Find(version)
	if entry == nil {
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
			fmt.Sprintf("Model version %s not found for %s", version, modelType))
	}
	if entry.Status == ml.ModelStatusActive && !force {
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeConflict,
			"Cannot delete the active model version. Promote another version first or use force")
	}

	if delErr := r.artifacts.Delete(modelType, version); delErr != nil {
		r.lc.Errorf("Error deleting %s model artifact v%s: %v", modelType, version, delErr)
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeDBError,
			fmt.Sprintf("Error deleting model artifact for %s v%s", modelType, version))
	}

	kept := index.Versions[:0]
	for _, candidate := range index.Versions {
		if candidate.Version != version {
			kept = append(kept, candidate)
		}
	}
	index.Versions = kept
	if index.ActiveVersion == version {
		index.ActiveVersion = ""
	}
	index.Modified = db.MakeTimestamp()
	if err := r.dbClient.SaveRegistryIndex(index); err != nil {
		return err
	}

	r.lc.Infof("deleted %s model v%s", modelType, version)
	return nil
}

// Deprecate retires a version without deleting its artifact. The ACTIVE
// version cannot be deprecated in place.
func (r *ModelRegistry) Deprecate(modelType string, version string) pulseErrors.PulseError {
	mutex, lockErr := r.dbClient.AcquireRedisLock(registryLockName(modelType))
	if lockErr != nil {
		return lockErr
	}
	defer mutex.Unlock()

	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return err
	}
	entry := index.Find(version)
	if entry == nil {
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
			fmt.Sprintf("Model version %s not found for %s", version, modelType))
	}
	if entry.Status == ml.ModelStatusActive {
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeConflict,
			"Cannot deprecate the active model version. Promote another version first")
	}

	entry.Status = ml.ModelStatusDeprecated
	entry.TrafficPercentage = 0
	index.Modified = db.MakeTimestamp()
	if err := r.dbClient.SaveRegistryIndex(index); err != nil {
		return err
	}

	r.lc.Infof("deprecated %s model v%s", modelType, version)
	return nil
}

// List returns the registry view for one model type, newest version first
func (r *ModelRegistry) List(modelType string) (ml.RegistrySummary, pulseErrors.PulseError) {
	index, err := r.dbClient.GetRegistryIndex(modelType)
	if err != nil {
		return ml.RegistrySummary{}, err
	}

	versions := make([]ml.ModelVersion, len(index.Versions))
	copy(versions, index.Versions)
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].CreatedAt > versions[j].CreatedAt
	})

	return ml.RegistrySummary{
		ModelType:     modelType,
		ActiveVersion: index.ActiveVersion,
		VersionCount:  len(versions),
		Versions:      versions,
	}, nil
}

func (r *ModelRegistry) loadVersion(version ml.ModelVersion) (*LoadedModel, pulseErrors.PulseError) {
	artifact, err := r.artifacts.Load(version.ModelType, version.Version, version.ModelChecksum)
	if err != nil {
		r.lc.Errorf("Error loading %s model v%s: %v", version.ModelType, version.Version, err)
		return nil, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeModel,
			fmt.Sprintf("Model %s v%s cannot be loaded", version.ModelType, version.Version))
	}
	return &LoadedModel{
		Version:  version,
		Ensemble: artifact.Ensemble,
		Forest:   artifact.Forest,
	}, nil
}

// promoteInIndex demotes the current ACTIVE version to ARCHIVED and
// activates the target in one pass, so the one-active invariant holds even
// when the target is the version being demoted
func promoteInIndex(index *ml.RegistryIndex, version string) pulseErrors.PulseError {
	if index.Find(version) == nil {
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound,
			fmt.Sprintf("Model version %s not found for %s", version, index.ModelType))
	}

	for i := range index.Versions {
		if index.Versions[i].Status == ml.ModelStatusActive {
			index.Versions[i].Status = ml.ModelStatusArchived
			index.Versions[i].TrafficPercentage = 0
		}
		if index.Versions[i].Version == version {
			index.Versions[i].Status = ml.ModelStatusActive
			index.Versions[i].TrafficPercentage = 100
		}
	}
	index.ActiveVersion = version
	index.Modified = db.MakeTimestamp()
	return nil
}

func validatePayload(request RegisterRequest) pulseErrors.PulseError {
	switch {
	case request.Ensemble == nil && request.Forest == nil:
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			"Register requires a trained model payload")
	case request.Ensemble != nil && request.Forest != nil:
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			"Register accepts a single model payload, got two")
	case request.Ensemble != nil && !request.Ensemble.Fitted:
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			"Cannot register an unfitted ensemble model")
	case request.Forest != nil && !request.Forest.Fitted:
		return pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeBadRequest,
			"Cannot register an unfitted regression model")
	}
	return nil
}

func algorithmFor(request RegisterRequest) string {
	if request.Algorithm != "" {
		return request.Algorithm
	}
	if request.Forest != nil {
		return "random_forest"
	}
	return "ensemble"
}

func hyperparametersFor(request RegisterRequest) map[string]interface{} {
	if request.Hyperparameters != nil {
		return request.Hyperparameters
	}
	if request.Forest != nil {
		return request.Forest.Hyperparameters()
	}
	return request.Ensemble.Hyperparameters()
}

func featuresFor(request RegisterRequest) []string {
	if len(request.Features) > 0 {
		return request.Features
	}
	if request.Forest != nil {
		return request.Forest.FeatureNames
	}
	return request.Ensemble.FeatureNames
}
