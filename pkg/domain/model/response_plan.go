package model

// ResponsePlanRecord is one row of the response plan sheet
type ResponsePlanRecord struct {
	Row             int    `json:"row"`
	StrategicAction string `json:"strategic_action"`
	RiskEvent       string `json:"risk_event"`
	Causes          string `json:"causes"`
	ResponseType    string `json:"response_type"`
	Action          string `json:"action"`
	Timing          string `json:"timing"`
	Location        string `json:"location"`
	Justification   string `json:"justification"`
	Responsible     string `json:"responsible"`
	Method          string `json:"method"`
	EstimatedCost   string `json:"estimated_cost"`
}
