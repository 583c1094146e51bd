package usecase

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

// Portfolio answers read-only questions about one loaded workbook
type Portfolio struct {
	ts *model.TableSet
}

func NewPortfolio(ts *model.TableSet) *Portfolio {
	return &Portfolio{ts: ts}
}

// Count is a number of risks sharing a key
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ClassificationCount is a number of risks sharing a classification
type ClassificationCount struct {
	Classification types.Classification `json:"classification"`
	Label          string               `json:"label"`
	Count          int                  `json:"count"`
}

// Heatmap counts risks by probability (first index) and impact (second
// index) grade, both shifted to start at zero
type Heatmap [types.MaxGrade][types.MaxGrade]int

// At returns the count of a probability and impact grade pair
func (h Heatmap) At(probability, impact types.Grade) int {
	if !probability.IsValid() || !impact.IsValid() {
		return 0
	}
	return h[probability-1][impact-1]
}

type Summary struct {
	Total                int `json:"total"`
	InherentUnacceptable int `json:"inherent_unacceptable"`
	ResidualUnacceptable int `json:"residual_unacceptable"`
	// Reduction is how many unacceptable risks the controls bring down
	Reduction int `json:"reduction"`

	Heatmap    Heatmap               `json:"heatmap"`
	Inherent   []ClassificationCount `json:"inherent"`
	Residual   []ClassificationCount `json:"residual"`
	ByCategory []Count               `json:"by_category"`
	ByOwner    []Count               `json:"by_owner"`
}

// Summary aggregates the risk map. Classifications use the loaded labels and
// fall back to the computed ones when a label is missing.
func (p *Portfolio) Summary() Summary {
	risks := p.ts.Risks()
	s := Summary{Total: len(risks)}

	inherent := make(map[types.Classification]int)
	residual := make(map[types.Classification]int)
	category := newCounter()
	owner := newCounter()

	for _, r := range risks {
		a := model.Assess(r)
		inherent[a.Inherent.Classification()]++
		residual[a.Residual.Classification()]++
		category.add(r.Category)
		owner.add(r.Owner)

		if !r.Probability.Valid || !r.Impact.Valid {
			continue
		}
		pg, perr := types.GradeFromNumber(r.Probability.Value)
		ig, ierr := types.GradeFromNumber(r.Impact.Value)
		if perr == nil && ierr == nil {
			s.Heatmap[pg-1][ig-1]++
		}
	}

	s.InherentUnacceptable = inherent[types.ClassificationUnacceptable]
	s.ResidualUnacceptable = residual[types.ClassificationUnacceptable]
	s.Reduction = s.InherentUnacceptable - s.ResidualUnacceptable
	s.Inherent = classificationCounts(inherent)
	s.Residual = classificationCounts(residual)
	s.ByCategory = category.counts()
	s.ByOwner = owner.counts()
	return s
}

func classificationCounts(m map[types.Classification]int) []ClassificationCount {
	all := types.AllClassifications()
	result := make([]ClassificationCount, 0, len(all))
	for _, c := range all {
		result = append(result, ClassificationCount{Classification: c, Label: c.Label(), Count: m[c]})
	}
	return result
}

// counter counts keys in first-seen order. Blank keys are not counted.
type counter struct {
	index  map[string]int
	result []Count
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(key string) {
	if key == "" {
		return
	}
	if i, ok := c.index[key]; ok {
		c.result[i].Count++
		return
	}
	c.index[key] = len(c.result)
	c.result = append(c.result, Count{Key: key, Count: 1})
}

func (c *counter) counts() []Count {
	return append([]Count{}, c.result...)
}

// Filter selects risks. Empty fields match everything.
type Filter struct {
	Action   string
	Owner    string
	Residual types.Classification
}

func (f Filter) match(r model.RiskRecord) bool {
	if f.Action != "" && r.StrategicAction != f.Action {
		return false
	}
	if f.Owner != "" && r.Owner != f.Owner {
		return false
	}
	if f.Residual != "" && model.Assess(r).Residual.Classification() != f.Residual {
		return false
	}
	return true
}

// Risks returns the risks matching f in sheet order
func (p *Portfolio) Risks(f Filter) []model.RiskRecord {
	var result []model.RiskRecord
	for _, r := range p.ts.Risks() {
		if f.match(r) {
			result = append(result, r)
		}
	}
	return result
}

// RiskEvents returns the distinct risk events in sheet order
func (p *Portfolio) RiskEvents() []string {
	return p.distinct(func(r model.RiskRecord) string { return r.RiskEvent })
}

// Actions returns the distinct strategic actions in sheet order
func (p *Portfolio) Actions() []string {
	return p.distinct(func(r model.RiskRecord) string { return r.StrategicAction })
}

// Owners returns the distinct risk owners in sheet order, skipping blanks
func (p *Portfolio) Owners() []string {
	return p.distinct(func(r model.RiskRecord) string { return r.Owner })
}

func (p *Portfolio) distinct(key func(model.RiskRecord) string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for _, r := range p.ts.Risks() {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}
	return result
}

// RiskProfile is everything known about one risk event
type RiskProfile struct {
	Risk       model.RiskRecord          `json:"risk"`
	Assessment model.Assessment          `json:"assessment"`
	Plan       *model.ResponsePlanRecord `json:"plan"`
	Indicators []model.IndicatorRecord   `json:"indicators"`
}

// Profile returns the first risk of event with its plan and the indicators
// of its strategic action
func (p *Portfolio) Profile(event string) (*RiskProfile, error) {
	r, ok := p.ts.Risk(event)
	if !ok {
		return nil, goerr.Wrap(model.ErrRiskNotFound, "no such risk event", goerr.V(model.RiskEventKey, event))
	}

	link := p.ts.Linkage()
	profile := &RiskProfile{
		Risk:       r,
		Assessment: model.Assess(r),
		Indicators: link.IndicatorsFor(r.StrategicAction),
	}
	if plan, ok := link.PlanFor(event); ok {
		profile.Plan = &plan
	}
	return profile, nil
}

// Simulate applies control to the risk of event. An empty control simulates
// every level in order.
func (p *Portfolio) Simulate(event string, control types.ControlLevel) ([]model.RiskSimulation, error) {
	r, ok := p.ts.Risk(event)
	if !ok {
		return nil, goerr.Wrap(model.ErrRiskNotFound, "no such risk event", goerr.V(model.RiskEventKey, event))
	}

	levels := []types.ControlLevel{control}
	if control == "" {
		levels = types.AllControlLevels()
	}

	result := make([]model.RiskSimulation, 0, len(levels))
	for _, level := range levels {
		sim, err := model.SimulateRisk(r, level)
		if err != nil {
			return nil, err
		}
		result = append(result, sim)
	}
	return result, nil
}

// Audit lists every finding of the workbook: scoring disagreements of each
// risk, risk events repeated within a strategic action and risk events with
// more than one response plan row.
func (p *Portfolio) Audit() []model.Finding {
	findings := []model.Finding{}
	risks := p.ts.Risks()

	type actionEvent struct{ action, event string }
	seen := make(map[actionEvent]int)
	for _, r := range risks {
		findings = append(findings, model.Assess(r).Findings...)

		key := actionEvent{r.StrategicAction, r.RiskEvent}
		if first, ok := seen[key]; ok {
			findings = append(findings, model.Finding{
				Code:            model.FindingDuplicateRiskEvent,
				Sheet:           types.SheetKindRiskMap,
				Row:             r.Row,
				StrategicAction: r.StrategicAction,
				RiskEvent:       r.RiskEvent,
				Message:         fmt.Sprintf("risk event repeats row %d of the same strategic action", first),
			})
			continue
		}
		seen[key] = r.Row
	}

	link := p.ts.Linkage()
	for _, event := range link.DuplicatePlanKeys() {
		plans := link.PlansFor(event)
		for _, plan := range plans[1:] {
			findings = append(findings, model.Finding{
				Code:            model.FindingDuplicatePlan,
				Sheet:           types.SheetKindResponsePlan,
				Row:             plan.Row,
				StrategicAction: plan.StrategicAction,
				RiskEvent:       event,
				Message:         fmt.Sprintf("risk event already has a response plan at row %d; this row is ignored", plans[0].Row),
			})
		}
	}
	return findings
}
