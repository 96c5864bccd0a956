/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ml

// FeatureVector is an ordered feature row. Values line up with Schema
// position by position, the order is the one captured at training time.
type FeatureVector struct {
	Schema  []string        `json:"schema"            codec:"schema"`
	Values  []float64       `json:"values"            codec:"values"`
	Imputed map[string]bool `json:"imputed,omitempty" codec:"imputed,omitempty"`
}

// ValueOf returns the value for a named feature, false when the schema does
// not carry it
func (fv FeatureVector) ValueOf(name string) (float64, bool) {
	for i, col := range fv.Schema {
		if col == name && i < len(fv.Values) {
			return fv.Values[i], true
		}
	}
	return 0, false
}

func (fv FeatureVector) WasImputed(name string) bool {
	return fv.Imputed[name]
}
