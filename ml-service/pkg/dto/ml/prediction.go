/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package ml

const (
	RiskNormal   = "NORMAL"
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// RiskLevelFor maps a 0..100 anomaly score onto the risk bands
func RiskLevelFor(anomalyScore float64) string {
	switch {
	case anomalyScore >= 80:
		return RiskCritical
	case anomalyScore >= 60:
		return RiskHigh
	case anomalyScore >= 40:
		return RiskMedium
	case anomalyScore >= 20:
		return RiskLow
	default:
		return RiskNormal
	}
}

// riskRank orders the risk bands so callers can compare severities
var riskRank = map[string]int{
	RiskNormal:   0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

func RiskAtLeast(riskLevel string, floor string) bool {
	return riskRank[riskLevel] >= riskRank[floor]
}

// AnomalyPrediction is the ensemble verdict for one feature vector
type AnomalyPrediction struct {
	IsAnomaly    bool    `json:"isAnomaly"    codec:"isAnomaly"`
	AnomalyScore float64 `json:"anomalyScore" codec:"anomalyScore"` // 0..100, higher is worse
	// RawScore is the same verdict on the canonical [-1,1] scale consumed by
	// the health classifier, negative is anomalous.
	RawScore            float64         `json:"rawScore"            codec:"rawScore"`
	Confidence          float64         `json:"confidence"          codec:"confidence"` // 0..100
	AlgorithmVotes      map[string]bool `json:"algorithmVotes"      codec:"algorithmVotes"`
	ContributingFactors []string        `json:"contributingFactors" codec:"contributingFactors"`
	RiskLevel           string          `json:"riskLevel"           codec:"riskLevel"`
}

// MTTFPrediction is the predictive model output for one equipment profile
type MTTFPrediction struct {
	MTTFHours      float64 `json:"mttfHours"      codec:"mttfHours"`
	MTTFDays       float64 `json:"mttfDays"       codec:"mttfDays"`
	RiskLevel      string  `json:"riskLevel"      codec:"riskLevel"`
	Recommendation string  `json:"recommendation" codec:"recommendation"`
}

// MTTFRiskLevelFor maps predicted hours to failure onto maintenance risk bands
func MTTFRiskLevelFor(mttfHours float64) string {
	switch {
	case mttfHours < 100:
		return RiskCritical
	case mttfHours < 300:
		return RiskHigh
	case mttfHours < 500:
		return RiskMedium
	default:
		return RiskLow
	}
}
