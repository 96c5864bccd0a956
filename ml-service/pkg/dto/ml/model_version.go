/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ml

// Model families the registry manages
const (
	ModelTypeAnomalyDetection = "anomaly_detection"
	ModelTypePredictive       = "predictive"
	ModelTypeForecasting      = "forecasting"
	ModelTypeEnsemble         = "ensemble"
)

// Lifecycle states. STAGING versions never receive traffic until promoted,
// at most one version per model type is ACTIVE.
const (
	ModelStatusActive     = "ACTIVE"
	ModelStatusStaging    = "STAGING"
	ModelStatusArchived   = "ARCHIVED"
	ModelStatusDeprecated = "DEPRECATED"
)

// Version bump levels accepted by Register
const (
	BumpMajor = "major"
	BumpMinor = "minor"
	BumpPatch = "patch"
)

func IsValidModelType(modelType string) bool {
	switch modelType {
	case ModelTypeAnomalyDetection, ModelTypePredictive, ModelTypeForecasting, ModelTypeEnsemble:
		return true
	}
	return false
}

// ModelMetrics carries validation metrics captured at registration time.
// Anomaly models fill the score fields, regression models the error fields.
type ModelMetrics struct {
	TrainingSamples int     `json:"trainingSamples,omitempty" codec:"trainingSamples,omitempty"`
	AnomalyRate     float64 `json:"anomalyRate,omitempty"     codec:"anomalyRate,omitempty"`
	ScoreMean       float64 `json:"scoreMean,omitempty"       codec:"scoreMean,omitempty"`
	ScoreStd        float64 `json:"scoreStd,omitempty"        codec:"scoreStd,omitempty"`
	MAE             float64 `json:"mae,omitempty"             codec:"mae,omitempty"`
	RMSE            float64 `json:"rmse,omitempty"            codec:"rmse,omitempty"`
	R2              float64 `json:"r2,omitempty"              codec:"r2,omitempty"`
}

// ModelVersion is one registered model build
type ModelVersion struct {
	Version         string                 `json:"version"                   codec:"version"` // maj.min.patch
	ModelType       string                 `json:"modelType"                 codec:"modelType" validate:"required"`
	Status          string                 `json:"status"                    codec:"status"`
	Algorithm       string                 `json:"algorithm"                 codec:"algorithm"`
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty" codec:"hyperparameters,omitempty"`
	Features        []string               `json:"features,omitempty"        codec:"features,omitempty"`
	Metrics         ModelMetrics           `json:"metrics"                   codec:"metrics"`
	// ModelChecksum is the sha256 of the artifact payload, verified on load
	ModelChecksum     string  `json:"modelChecksum,omitempty" codec:"modelChecksum,omitempty"`
	TrafficPercentage float64 `json:"trafficPercentage"       codec:"trafficPercentage"` // 0..100
	CreatedAt         int64   `json:"createdAt"               codec:"createdAt"`         // epoch millis
	CreatedBy         string  `json:"createdBy,omitempty"     codec:"createdBy,omitempty"`
	Description       string  `json:"description,omitempty"   codec:"description,omitempty"`
}

// RegistryIndex is the whole registry state for one model type. It is stored
// as a single document so readers always observe a point-in-time view even
// while a promotion is in flight.
type RegistryIndex struct {
	ModelType     string         `json:"modelType"               codec:"modelType"`
	Versions      []ModelVersion `json:"versions"                codec:"versions"`
	ActiveVersion string         `json:"activeVersion,omitempty" codec:"activeVersion,omitempty"`
	Modified      int64          `json:"modified"                codec:"modified"`
}

// Active returns the ACTIVE version from the index, nil when none is active
func (idx *RegistryIndex) Active() *ModelVersion {
	for i := range idx.Versions {
		if idx.Versions[i].Status == ModelStatusActive {
			return &idx.Versions[i]
		}
	}
	return nil
}

// Find returns the version entry by version string, nil when absent
func (idx *RegistryIndex) Find(version string) *ModelVersion {
	for i := range idx.Versions {
		if idx.Versions[i].Version == version {
			return &idx.Versions[i]
		}
	}
	return nil
}

// RegistrySummary is the list-view projection served over REST
type RegistrySummary struct {
	ModelType     string         `json:"modelType"`
	ActiveVersion string         `json:"activeVersion,omitempty"`
	VersionCount  int            `json:"versionCount"`
	Versions      []ModelVersion `json:"versions"`
}
