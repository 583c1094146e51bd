package model

import (
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

// TableSet is the validated content of one workbook. It is built once by
// ingestion and never modified; every accessor returns copies.
type TableSet struct {
	source     string
	tables     map[types.SheetKind]*Table
	risks      []RiskRecord
	plans      []ResponsePlanRecord
	indicators []IndicatorRecord
	linkage    *Linkage
}

// NewTableSet builds a TableSet from validated tables and their records
func NewTableSet(source string, tables []*Table, risks []RiskRecord, plans []ResponsePlanRecord, indicators []IndicatorRecord) *TableSet {
	ts := &TableSet{
		source:     source,
		tables:     make(map[types.SheetKind]*Table, len(tables)),
		risks:      append([]RiskRecord{}, risks...),
		plans:      append([]ResponsePlanRecord{}, plans...),
		indicators: append([]IndicatorRecord{}, indicators...),
	}
	for _, t := range tables {
		ts.tables[t.Kind()] = t
	}
	ts.linkage = newLinkage(ts)
	return ts
}

// Source returns the name of the workbook the set was loaded from
func (ts *TableSet) Source() string {
	return ts.source
}

// Table returns the validated table of a sheet kind
func (ts *TableSet) Table(kind types.SheetKind) (*Table, bool) {
	t, ok := ts.tables[kind]
	return t, ok
}

// Integrated reports whether the indicator plan was loaded
func (ts *TableSet) Integrated() bool {
	_, ok := ts.tables[types.SheetKindIndicatorPlan]
	return ok
}

// Risks returns the risk map records in sheet order
func (ts *TableSet) Risks() []RiskRecord {
	return append([]RiskRecord{}, ts.risks...)
}

// Plans returns the response plan records in sheet order
func (ts *TableSet) Plans() []ResponsePlanRecord {
	return append([]ResponsePlanRecord{}, ts.plans...)
}

// Indicators returns the indicator records in sheet order
func (ts *TableSet) Indicators() []IndicatorRecord {
	return append([]IndicatorRecord{}, ts.indicators...)
}

// Linkage returns the cross-table resolver of the set
func (ts *TableSet) Linkage() *Linkage {
	return ts.linkage
}

// Risk returns the first risk record of event
func (ts *TableSet) Risk(event string) (RiskRecord, bool) {
	i, ok := ts.linkage.riskByEvent[event]
	if !ok {
		return RiskRecord{}, false
	}
	return ts.risks[i], true
}
