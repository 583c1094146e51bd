package model

// IndicatorRecord is one row of the indicator plan. Several indicators may
// share a strategic action.
type IndicatorRecord struct {
	Row             int    `json:"row"`
	Objective       string `json:"objective"`
	Initiative      string `json:"initiative"`
	StrategicAction string `json:"strategic_action"`
	Title           string `json:"title"`
	Formula         string `json:"formula"`
	Unit            string `json:"unit"`
	Baseline        string `json:"baseline"`
	Target          string `json:"target"`
	Parameter       string `json:"parameter"`
}
