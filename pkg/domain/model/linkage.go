package model

// Linkage joins the risk map, response plan and indicator plan on strategic
// action and risk event. Keys compare exactly; ingestion already trimmed them.
// Missing counterparts are a valid state, never an error.
type Linkage struct {
	ts                 *TableSet
	riskByEvent        map[string]int
	risksByAction      map[string][]int
	plansByEvent       map[string][]int
	planEvents         []string
	indicatorsByAction map[string][]int
}

func newLinkage(ts *TableSet) *Linkage {
	l := &Linkage{
		ts:                 ts,
		riskByEvent:        make(map[string]int),
		risksByAction:      make(map[string][]int),
		plansByEvent:       make(map[string][]int),
		indicatorsByAction: make(map[string][]int),
	}
	for i, r := range ts.risks {
		if _, ok := l.riskByEvent[r.RiskEvent]; !ok {
			l.riskByEvent[r.RiskEvent] = i
		}
		l.risksByAction[r.StrategicAction] = append(l.risksByAction[r.StrategicAction], i)
	}
	for i, p := range ts.plans {
		if _, ok := l.plansByEvent[p.RiskEvent]; !ok {
			l.planEvents = append(l.planEvents, p.RiskEvent)
		}
		l.plansByEvent[p.RiskEvent] = append(l.plansByEvent[p.RiskEvent], i)
	}
	for i, ind := range ts.indicators {
		l.indicatorsByAction[ind.StrategicAction] = append(l.indicatorsByAction[ind.StrategicAction], i)
	}
	return l
}

// PlanFor returns the first response plan row of event. A risk whose plan
// flag says there is no plan has none, even if a stale row remains.
func (l *Linkage) PlanFor(event string) (ResponsePlanRecord, bool) {
	if i, ok := l.riskByEvent[event]; ok && !l.ts.risks[i].HasResponsePlan {
		return ResponsePlanRecord{}, false
	}
	idx := l.plansByEvent[event]
	if len(idx) == 0 {
		return ResponsePlanRecord{}, false
	}
	return l.ts.plans[idx[0]], true
}

// PlansFor returns every response plan row of event, ignoring the plan flag
func (l *Linkage) PlansFor(event string) []ResponsePlanRecord {
	idx := l.plansByEvent[event]
	result := make([]ResponsePlanRecord, 0, len(idx))
	for _, i := range idx {
		result = append(result, l.ts.plans[i])
	}
	return result
}

// IndicatorsFor returns the indicators of a strategic action
func (l *Linkage) IndicatorsFor(action string) []IndicatorRecord {
	idx := l.indicatorsByAction[action]
	result := make([]IndicatorRecord, 0, len(idx))
	for _, i := range idx {
		result = append(result, l.ts.indicators[i])
	}
	return result
}

// RisksFor returns the risks of a strategic action
func (l *Linkage) RisksFor(action string) []RiskRecord {
	idx := l.risksByAction[action]
	result := make([]RiskRecord, 0, len(idx))
	for _, i := range idx {
		result = append(result, l.ts.risks[i])
	}
	return result
}

// DuplicatePlanKeys returns risk events with more than one response plan row,
// in order of first appearance. Only the first row is used by PlanFor.
func (l *Linkage) DuplicatePlanKeys() []string {
	var keys []string
	for _, event := range l.planEvents {
		if len(l.plansByEvent[event]) > 1 {
			keys = append(keys, event)
		}
	}
	return keys
}
