package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

// Simulation is the residual risk obtained by applying a hypothetical control
// to a fixed inherent level
type Simulation struct {
	InherentLevel          float64              `json:"inherent_level"`
	Control                types.ControlLevel   `json:"control"`
	Weight                 float64              `json:"weight"`
	ResidualLevel          float64              `json:"residual_level"`
	ResidualClassification types.Classification `json:"residual_classification"`
}

// Simulate computes inherent x weight(control) and its classification.
// It is pure; the only failure is an unknown control level.
func Simulate(inherent float64, control types.ControlLevel) (Simulation, error) {
	w, err := control.Weight()
	if err != nil {
		return Simulation{}, goerr.Wrap(err, "failed to simulate control", goerr.V(ControlLevelKey, control))
	}
	residual := RoundLevel(inherent * w)
	return Simulation{
		InherentLevel:          inherent,
		Control:                control,
		Weight:                 w,
		ResidualLevel:          residual,
		ResidualClassification: types.Classify(residual),
	}, nil
}

// SimulateAll returns one simulation per control level, weakest first
func SimulateAll(inherent float64) []Simulation {
	levels := types.AllControlLevels()
	result := make([]Simulation, 0, len(levels))
	for _, level := range levels {
		sim, err := Simulate(inherent, level)
		if err != nil {
			continue
		}
		result = append(result, sim)
	}
	return result
}

// RiskSimulation shows the original residual of a risk next to a simulated one
type RiskSimulation struct {
	StrategicAction        string               `json:"strategic_action"`
	RiskEvent              string               `json:"risk_event"`
	InherentLevel          float64              `json:"inherent_level"`
	InherentClassification types.Classification `json:"inherent_classification"`
	OriginalControl        types.ControlLevel   `json:"original_control"`
	OriginalWeight         Number               `json:"original_weight"`
	OriginalResidual       Number               `json:"original_residual"`
	OriginalClassification types.Classification `json:"original_classification"`
	Simulated              Simulation           `json:"simulated"`
	// Delta is simulated minus original residual level, when the original is known
	Delta Number `json:"delta"`
}

// SimulateRisk applies control to the fixed inherent level of r. The loaded
// inherent level is used when present, otherwise probability x impact.
func SimulateRisk(r RiskRecord, control types.ControlLevel) (RiskSimulation, error) {
	a := Assess(r)
	inherent := a.Inherent.Level()
	if !inherent.Valid {
		return RiskSimulation{}, goerr.Wrap(ErrMissingInherent, "cannot simulate risk",
			goerr.V(RiskEventKey, r.RiskEvent), goerr.V(RowKey, r.Row))
	}

	sim, err := Simulate(inherent.Value, control)
	if err != nil {
		return RiskSimulation{}, goerr.Wrap(err, "cannot simulate risk", goerr.V(RiskEventKey, r.RiskEvent))
	}

	result := RiskSimulation{
		StrategicAction:        r.StrategicAction,
		RiskEvent:              r.RiskEvent,
		InherentLevel:          inherent.Value,
		InherentClassification: a.Inherent.Classification(),
		OriginalControl:        r.ControlLevel,
		OriginalWeight:         a.Weight,
		OriginalResidual:       a.Residual.Level(),
		OriginalClassification: a.Residual.Classification(),
		Simulated:              sim,
	}
	if result.OriginalResidual.Valid {
		result.Delta = Some(RoundLevel(sim.ResidualLevel - result.OriginalResidual.Value))
	}
	return result, nil
}
