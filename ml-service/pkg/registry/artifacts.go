/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/pkg/errors"

	"plantpulse/ml-service/pkg/dto/ml"
	"plantpulse/ml-service/pkg/ensemble"
	"plantpulse/ml-service/pkg/predictive"
)

var (
	mkdirAllFunc  = os.MkdirAll
	writeFileFunc = os.WriteFile
	readFileFunc  = os.ReadFile
	removeAllFunc = os.RemoveAll
)

const (
	// ArtifactFormatVersion is bumped when the serialized layout changes
	ArtifactFormatVersion = 1

	modelFileName    = "model.json"
	metadataFileName = "metadata.json"
	checksumFileName = "model.sha256"
)

// ModelArtifact is the self-describing serialized form of one trained model.
// Exactly one of the payload fields is set depending on the model family;
// the scalers travel inside the detectors.
type ModelArtifact struct {
	FormatVersion int    `json:"formatVersion"`
	ModelType     string `json:"modelType"`
	Algorithm     string `json:"algorithm"`
	SavedAt       int64  `json:"savedAt"`

	Ensemble *ensemble.EnsembleDetector        `json:"ensemble,omitempty"`
	Forest   *predictive.RandomForestRegressor `json:"forest,omitempty"`
}

type ArtifactStoreInterface interface {
	Save(artifact ModelArtifact, version string) (string, error)
	Load(modelType string, version string, expectedChecksum string) (ModelArtifact, error)
	SaveMetadata(version ml.ModelVersion) error
	Delete(modelType string, version string) error
	VersionDir(modelType string, version string) string
}

// ArtifactStore persists model payloads under
// <base>/<modelType>/v<version>/ with a sha256 checksum alongside.
type ArtifactStore struct {
	BaseDir string
	lc      logger.LoggingClient
}

func NewArtifactStore(baseDir string, lc logger.LoggingClient) *ArtifactStore {
	return &ArtifactStore{BaseDir: baseDir, lc: lc}
}

func (s *ArtifactStore) VersionDir(modelType string, version string) string {
	return filepath.Join(s.BaseDir, modelType, "v"+version)
}

// Save writes the model payload and its checksum file, returning the sha256
// hex digest of the payload
func (s *ArtifactStore) Save(artifact ModelArtifact, version string) (string, error) {
	dir := s.VersionDir(artifact.ModelType, version)
	if err := mkdirAllFunc(dir, os.ModePerm); err != nil {
		return "", errors.Wrapf(err, "creating model directory %s", dir)
	}

	payload, err := json.Marshal(artifact)
	if err != nil {
		return "", errors.Wrap(err, "serializing model artifact")
	}

	digest := sha256.Sum256(payload)
	checksum := hex.EncodeToString(digest[:])

	if err := writeFileFunc(filepath.Join(dir, modelFileName), payload, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", modelFileName)
	}
	if err := writeFileFunc(filepath.Join(dir, checksumFileName), []byte(checksum), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", checksumFileName)
	}

	s.lc.Infof("saved %s model artifact v%s (checksum %.12s...)", artifact.ModelType, version, checksum)
	return checksum, nil
}

// Load reads the payload back and verifies its integrity. An empty
// expectedChecksum falls back to the stored checksum file.
func (s *ArtifactStore) Load(
	modelType string,
	version string,
	expectedChecksum string,
) (ModelArtifact, error) {
	var artifact ModelArtifact

	dir := s.VersionDir(modelType, version)
	payload, err := readFileFunc(filepath.Join(dir, modelFileName))
	if err != nil {
		return artifact, errors.Wrapf(err, "reading model artifact for %s v%s", modelType, version)
	}

	if expectedChecksum == "" {
		if stored, readErr := readFileFunc(filepath.Join(dir, checksumFileName)); readErr == nil {
			expectedChecksum = string(stored)
		}
	}
	if expectedChecksum != "" {
		digest := sha256.Sum256(payload)
		if hex.EncodeToString(digest[:]) != expectedChecksum {
			return artifact, errors.Errorf(
				"checksum mismatch for %s v%s, artifact is corrupt", modelType, version)
		}
	}

	if err := json.Unmarshal(payload, &artifact); err != nil {
		return artifact, errors.Wrapf(err, "deserializing model artifact for %s v%s", modelType, version)
	}
	if artifact.FormatVersion > ArtifactFormatVersion {
		return artifact, errors.Errorf(
			"model artifact for %s v%s has format version %d, this build reads up to %d",
			modelType, version, artifact.FormatVersion, ArtifactFormatVersion)
	}
	return artifact, nil
}

// SaveMetadata writes the version document next to the payload so a version
// directory is self-contained even without the registry index
func (s *ArtifactStore) SaveMetadata(version ml.ModelVersion) error {
	dir := s.VersionDir(version.ModelType, version.Version)
	if err := mkdirAllFunc(dir, os.ModePerm); err != nil {
		return errors.Wrapf(err, "creating model directory %s", dir)
	}

	doc, err := json.MarshalIndent(version, "", "  ")
	if err != nil {
		return errors.Wrap(err, "serializing version metadata")
	}
	if err := writeFileFunc(filepath.Join(dir, metadataFileName), doc, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", metadataFileName)
	}
	return nil
}

func (s *ArtifactStore) Delete(modelType string, version string) error {
	dir := s.VersionDir(modelType, version)
	if err := removeAllFunc(dir); err != nil {
		return errors.Wrapf(err, "removing model directory %s", dir)
	}
	s.lc.Infof("deleted %s model artifact v%s", modelType, version)
	return nil
}

// ChecksumOf is exposed for callers that need the digest of an arbitrary
// serialized payload, e.g. upload validation
func ChecksumOf(payload []byte) string {
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}
