/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"plantpulse/ml-service/pkg/dto/ml"
)

// parseSemver splits "major.minor.patch" into its numeric parts
func parseSemver(version string) (int, int, int, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return 0, 0, 0, errors.Errorf("invalid model version %q", version)
	}

	numbers := make([]int, 3)
	for i, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil || number < 0 {
			return 0, 0, 0, errors.Errorf("invalid model version %q", version)
		}
		numbers[i] = number
	}
	return numbers[0], numbers[1], numbers[2], nil
}

// compareSemver orders two version strings numerically, so "1.10.0" sorts
// after "1.9.0". Unparseable versions sort lowest.
func compareSemver(a, b string) int {
	aMajor, aMinor, aPatch, aErr := parseSemver(a)
	bMajor, bMinor, bPatch, bErr := parseSemver(b)
	if aErr != nil || bErr != nil {
		switch {
		case aErr != nil && bErr != nil:
			return 0
		case aErr != nil:
			return -1
		default:
			return 1
		}
	}

	for _, pair := range [][2]int{{aMajor, bMajor}, {aMinor, bMinor}, {aPatch, bPatch}} {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// latestVersion returns the numerically highest version in the slice, ""
// for an empty registry
func latestVersion(versions []ml.ModelVersion) string {
	latest := ""
	for _, version := range versions {
		if latest == "" || compareSemver(version.Version, latest) > 0 {
			latest = version.Version
		}
	}
	return latest
}

// nextVersion computes the version a new registration receives. The first
// version of a model type is always 1.0.0 regardless of the requested bump;
// an empty bump defaults to patch.
func nextVersion(latest string, bump string) (string, error) {
	if latest == "" {
		return "1.0.0", nil
	}

	major, minor, patch, err := parseSemver(latest)
	if err != nil {
		return "", err
	}

	switch bump {
	case ml.BumpMajor:
		return fmt.Sprintf("%d.0.0", major+1), nil
	case ml.BumpMinor:
		return fmt.Sprintf("%d.%d.0", major, minor+1), nil
	case ml.BumpPatch, "":
		return fmt.Sprintf("%d.%d.%d", major, minor, patch+1), nil
	default:
		return "", errors.Errorf("invalid version bump %q, expected major, minor or patch", bump)
	}
}
