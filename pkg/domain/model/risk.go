package model

import "github.com/secmon-lab/riskdeck/pkg/domain/types"

// RiskRecord is one row of the risk map.
// Level and classification fields hold the values as loaded from the workbook;
// Assess recomputes them for comparison.
type RiskRecord struct {
	Row             int    `json:"row"`
	StrategicAction string `json:"strategic_action"`
	RiskEvent       string `json:"risk_event"`
	Causes          string `json:"causes"`
	Consequences    string `json:"consequences"`
	Category        string `json:"category"`
	Owner           string `json:"owner"`

	Probability            Number               `json:"probability"`
	Impact                 Number               `json:"impact"`
	InherentLevel          Number               `json:"inherent_level"`
	InherentLabel          string               `json:"inherent_label"`
	InherentClassification types.Classification `json:"inherent_classification"`

	ControlDescription string             `json:"control_description"`
	ControlTag         string             `json:"control_tag"`
	ControlLevel       types.ControlLevel `json:"control_level"`
	ControlWeight      Number             `json:"control_weight"`

	ResidualLevel          Number               `json:"residual_level"`
	ResidualLabel          string               `json:"residual_label"`
	ResidualClassification types.Classification `json:"residual_classification"`

	ResponseStrategy  string `json:"response_strategy"`
	ResponsePlanLabel string `json:"response_plan_label"`
	HasResponsePlan   bool   `json:"has_response_plan"`
}

// DefaultNoPlanTokens are response plan cell values meaning "no plan"
var DefaultNoPlanTokens = []string{"Não", "Nao", "No", "N"}
