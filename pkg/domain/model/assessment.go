package model

import (
	"fmt"
	"math"

	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

// FindingCode identifies the kind of data quality issue
type FindingCode string

const (
	FindingInherentLevelMismatch          FindingCode = "inherent_level_mismatch"
	FindingInherentClassificationMismatch FindingCode = "inherent_classification_mismatch"
	FindingResidualLevelMismatch          FindingCode = "residual_level_mismatch"
	FindingResidualClassificationMismatch FindingCode = "residual_classification_mismatch"
	FindingControlWeightMismatch          FindingCode = "control_weight_mismatch"
	FindingGradeOutOfRange                FindingCode = "grade_out_of_range"
	FindingUnrecognizedClassification     FindingCode = "unrecognized_classification"
	FindingMissingScoreInput              FindingCode = "missing_score_input"
	FindingDuplicatePlan                  FindingCode = "duplicate_plan"
	FindingDuplicateRiskEvent             FindingCode = "duplicate_risk_event"
)

// Finding is a validation warning. Findings never reject a workbook.
type Finding struct {
	Code            FindingCode     `json:"code"`
	Sheet           types.SheetKind `json:"sheet"`
	Row             int             `json:"row,omitempty"`
	StrategicAction string          `json:"strategic_action,omitempty"`
	RiskEvent       string          `json:"risk_event,omitempty"`
	Message         string          `json:"message"`
}

// levelTolerance absorbs float noise such as 12*0.4 = 4.800000000000001
const (
	levelTolerance = 1e-6
	levelScale     = 1e6
)

// RoundLevel rounds a computed level to six decimal places
func RoundLevel(v float64) float64 {
	return math.Round(v*levelScale) / levelScale
}

func sameLevel(a, b float64) bool {
	return math.Abs(a-b) <= levelTolerance
}

// LevelCheck pairs a loaded level and classification with the recomputed ones
type LevelCheck struct {
	Loaded                 Number               `json:"loaded"`
	Computed               Number               `json:"computed"`
	LoadedClassification   types.Classification `json:"loaded_classification"`
	ComputedClassification types.Classification `json:"computed_classification"`
}

// Level returns the level to display: the loaded one when present
func (c LevelCheck) Level() Number {
	if c.Loaded.Valid {
		return c.Loaded
	}
	return c.Computed
}

// Classification returns the classification to display: the loaded one when recognized
func (c LevelCheck) Classification() types.Classification {
	if c.LoadedClassification.IsValid() {
		return c.LoadedClassification
	}
	return c.ComputedClassification
}

// Consistent reports whether loaded and computed values agree where both exist
func (c LevelCheck) Consistent() bool {
	if c.Loaded.Valid && c.Computed.Valid && !sameLevel(c.Loaded.Value, c.Computed.Value) {
		return false
	}
	if c.LoadedClassification.IsValid() && c.ComputedClassification.IsValid() &&
		c.LoadedClassification != c.ComputedClassification {
		return false
	}
	return true
}

// Assessment is the scoring engine's view of a risk record
type Assessment struct {
	RiskEvent string     `json:"risk_event"`
	Inherent  LevelCheck `json:"inherent"`
	Residual  LevelCheck `json:"residual"`
	// Weight is the weight used for the recomputed residual level
	Weight   Number    `json:"weight"`
	Findings []Finding `json:"findings"`
}

// Consistent reports whether the record agrees with the scoring rules
func (a Assessment) Consistent() bool {
	return len(a.Findings) == 0
}

// Assess recomputes inherent level (probability x impact), residual level
// (inherent x control weight) and both classifications, and reports where the
// loaded values disagree. The record is not modified.
func Assess(r RiskRecord) Assessment {
	a := Assessment{
		RiskEvent: r.RiskEvent,
		Findings:  []Finding{},
	}
	warn := func(code FindingCode, format string, args ...any) {
		a.Findings = append(a.Findings, Finding{
			Code:            code,
			Sheet:           types.SheetKindRiskMap,
			Row:             r.Row,
			StrategicAction: r.StrategicAction,
			RiskEvent:       r.RiskEvent,
			Message:         fmt.Sprintf(format, args...),
		})
	}

	for _, g := range []struct {
		name string
		n    Number
	}{{"probability", r.Probability}, {"impact", r.Impact}} {
		if !g.n.Valid {
			continue
		}
		if _, err := types.GradeFromNumber(g.n.Value); err != nil {
			warn(FindingGradeOutOfRange, "%s grade %s is not an integer between %d and %d",
				g.name, g.n, types.MinGrade, types.MaxGrade)
		}
	}

	if r.InherentLabel != "" && !r.InherentClassification.IsValid() {
		warn(FindingUnrecognizedClassification, "inherent evaluation %q is not a known classification", r.InherentLabel)
	}
	if r.ResidualLabel != "" && !r.ResidualClassification.IsValid() {
		warn(FindingUnrecognizedClassification, "residual evaluation %q is not a known classification", r.ResidualLabel)
	}

	// inherent
	a.Inherent.Loaded = r.InherentLevel
	a.Inherent.LoadedClassification = r.InherentClassification
	if r.Probability.Valid && r.Impact.Valid {
		a.Inherent.Computed = Some(RoundLevel(r.Probability.Value * r.Impact.Value))
	}
	if basis := a.Inherent.Computed; basis.Valid {
		a.Inherent.ComputedClassification = types.Classify(basis.Value)
	} else if r.InherentLevel.Valid {
		a.Inherent.ComputedClassification = types.Classify(r.InherentLevel.Value)
	}

	// weight
	tagWeight, tagErr := r.ControlLevel.Weight()
	switch {
	case tagErr == nil:
		a.Weight = Some(tagWeight)
		if r.ControlWeight.Valid && !sameLevel(r.ControlWeight.Value, tagWeight) {
			warn(FindingControlWeightMismatch, "control weight %s does not match %s (%v)",
				r.ControlWeight, r.ControlLevel.Label(), tagWeight)
		}
	case r.ControlWeight.Valid:
		a.Weight = r.ControlWeight
	}

	// residual
	a.Residual.Loaded = r.ResidualLevel
	a.Residual.LoadedClassification = r.ResidualClassification
	inherentBasis := a.Inherent.Computed
	if !inherentBasis.Valid {
		inherentBasis = r.InherentLevel
	}
	if inherentBasis.Valid && a.Weight.Valid {
		a.Residual.Computed = Some(RoundLevel(inherentBasis.Value * a.Weight.Value))
	}
	if basis := a.Residual.Computed; basis.Valid {
		a.Residual.ComputedClassification = types.Classify(basis.Value)
	} else if r.ResidualLevel.Valid {
		a.Residual.ComputedClassification = types.Classify(r.ResidualLevel.Value)
	}

	if !a.Inherent.Level().Valid || !a.Weight.Valid {
		warn(FindingMissingScoreInput, "not enough numeric input to score the risk")
	}

	if a.Inherent.Loaded.Valid && a.Inherent.Computed.Valid && !sameLevel(a.Inherent.Loaded.Value, a.Inherent.Computed.Value) {
		warn(FindingInherentLevelMismatch, "inherent level %s differs from probability x impact = %s",
			a.Inherent.Loaded, a.Inherent.Computed)
	}
	if a.Inherent.LoadedClassification.IsValid() && a.Inherent.ComputedClassification.IsValid() &&
		a.Inherent.LoadedClassification != a.Inherent.ComputedClassification {
		warn(FindingInherentClassificationMismatch, "inherent evaluation %s differs from computed %s",
			a.Inherent.LoadedClassification.Label(), a.Inherent.ComputedClassification.Label())
	}
	if a.Residual.Loaded.Valid && a.Residual.Computed.Valid && !sameLevel(a.Residual.Loaded.Value, a.Residual.Computed.Value) {
		warn(FindingResidualLevelMismatch, "residual level %s differs from inherent x weight = %s",
			a.Residual.Loaded, a.Residual.Computed)
	}
	if a.Residual.LoadedClassification.IsValid() && a.Residual.ComputedClassification.IsValid() &&
		a.Residual.LoadedClassification != a.Residual.ComputedClassification {
		warn(FindingResidualClassificationMismatch, "residual evaluation %s differs from computed %s",
			a.Residual.LoadedClassification.Label(), a.Residual.ComputedClassification.Label())
	}

	return a
}
