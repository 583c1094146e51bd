package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

// ColumnID names a column positionally assigned during ingestion
type ColumnID string

// Column IDs shared by several sheets use the same constant so joins line up.
const (
	ColumnPlaceholder     ColumnID = "blank"
	ColumnStrategicAction ColumnID = "strategic_action"
	ColumnRiskEvent       ColumnID = "risk_event"
	ColumnCauses          ColumnID = "causes"

	// risk map
	ColumnConsequences           ColumnID = "consequences"
	ColumnCategory               ColumnID = "category"
	ColumnRiskOwner              ColumnID = "risk_owner"
	ColumnProbability            ColumnID = "probability"
	ColumnImpact                 ColumnID = "impact"
	ColumnInherentLevel          ColumnID = "inherent_level"
	ColumnInherentClassification ColumnID = "inherent_classification"
	ColumnControlDescription     ColumnID = "control_description"
	ColumnControlLevel           ColumnID = "control_level"
	ColumnControlWeight          ColumnID = "control_weight"
	ColumnResidualLevel          ColumnID = "residual_level"
	ColumnResidualClassification ColumnID = "residual_classification"
	ColumnResponseStrategy       ColumnID = "response_strategy"
	ColumnResponsePlan           ColumnID = "response_plan"

	// response plan
	ColumnResponseType  ColumnID = "response_type"
	ColumnWhat          ColumnID = "what"
	ColumnWhen          ColumnID = "when"
	ColumnWhere         ColumnID = "where"
	ColumnWhy           ColumnID = "why"
	ColumnWho           ColumnID = "who"
	ColumnHow           ColumnID = "how"
	ColumnEstimatedCost ColumnID = "estimated_cost"

	// indicator plan
	ColumnObjective      ColumnID = "objective"
	ColumnInitiative     ColumnID = "initiative"
	ColumnIndicator      ColumnID = "indicator"
	ColumnFormula        ColumnID = "formula"
	ColumnUnit           ColumnID = "unit"
	ColumnBaseline       ColumnID = "baseline"
	ColumnTarget         ColumnID = "target"
	ColumnParameter      ColumnID = "parameter"
	ColumnIndicatorOwner ColumnID = "indicator_owner"
	ColumnFrequency      ColumnID = "frequency"
	ColumnDataSource     ColumnID = "data_source"
	ColumnPolarity       ColumnID = "polarity"
	ColumnNotes          ColumnID = "notes"
	ColumnStatus         ColumnID = "status"
)

// ColumnSpec declares one positional column of a sheet
type ColumnSpec struct {
	ID    ColumnID         `json:"id"`
	Label string           `json:"label"`
	Kind  types.ColumnKind `json:"kind"`
	// Placeholder columns are blank leading columns of the template
	Placeholder bool `json:"placeholder,omitempty"`
	// Discard columns count toward the column contract but are not kept
	Discard bool `json:"discard,omitempty"`
	// FillDown columns hold values stored once per merged cell group
	FillDown bool `json:"fill_down,omitempty"`
}

// Retained reports whether the column survives ingestion
func (c ColumnSpec) Retained() bool {
	return !c.Placeholder && !c.Discard
}

// SheetSchema is the positional contract of one logical sheet.
// Header text in register workbooks is decorative and merged, so columns are
// identified only by position and the column count must match exactly.
type SheetSchema struct {
	Kind      types.SheetKind `json:"kind"`
	SheetName string          `json:"sheet_name"`
	// HeaderRow is the 1-based spreadsheet row holding the header. Rows above it
	// are titles and decoration.
	HeaderRow int          `json:"header_row"`
	JoinKey   ColumnID     `json:"join_key"`
	Columns   []ColumnSpec `json:"columns"`
}

// ExpectedColumns returns the full positional column sequence, placeholders included
func (s *SheetSchema) ExpectedColumns() []ColumnID {
	ids := make([]ColumnID, len(s.Columns))
	for i, c := range s.Columns {
		ids[i] = c.ID
	}
	return ids
}

// RetainedColumns returns the columns kept after ingestion, in sheet order
func (s *SheetSchema) RetainedColumns() []ColumnID {
	var ids []ColumnID
	for _, c := range s.Columns {
		if c.Retained() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Column returns the spec of a column by ID
func (s *SheetSchema) Column(id ColumnID) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Clone returns a deep copy that can be adjusted without touching the registry
func (s *SheetSchema) Clone() *SheetSchema {
	cloned := *s
	cloned.Columns = make([]ColumnSpec, len(s.Columns))
	copy(cloned.Columns, s.Columns)
	return &cloned
}

// Validate checks the schema is usable by the ingestion pipeline
func (s *SheetSchema) Validate() error {
	if !s.Kind.IsValid() {
		return goerr.Wrap(ErrInvalidSchema, "invalid sheet kind", goerr.V(SheetKindKey, s.Kind))
	}
	if s.SheetName == "" {
		return goerr.Wrap(ErrInvalidSchema, "sheet name is required", goerr.V(SheetKindKey, s.Kind))
	}
	if s.HeaderRow < 1 {
		return goerr.Wrap(ErrInvalidSchema, "header row must be 1 or greater",
			goerr.V(SheetKindKey, s.Kind), goerr.V(RowKey, s.HeaderRow))
	}
	if len(s.Columns) == 0 {
		return goerr.Wrap(ErrInvalidSchema, "at least one column is required", goerr.V(SheetKindKey, s.Kind))
	}

	seen := make(map[ColumnID]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Placeholder {
			continue
		}
		if c.ID == "" {
			return goerr.Wrap(ErrInvalidSchema, "column ID is required", goerr.V(SheetKindKey, s.Kind))
		}
		if !c.Kind.IsValid() {
			return goerr.Wrap(ErrInvalidSchema, "invalid column kind",
				goerr.V(SheetKindKey, s.Kind), goerr.V(ColumnKey, c.ID), goerr.V("column_kind", c.Kind))
		}
		if seen[c.ID] {
			return goerr.Wrap(ErrInvalidSchema, "duplicate column ID",
				goerr.V(SheetKindKey, s.Kind), goerr.V(ColumnKey, c.ID))
		}
		seen[c.ID] = true
	}

	key, ok := s.Column(s.JoinKey)
	if !ok || !key.Retained() {
		return goerr.Wrap(ErrInvalidSchema, "join key must be a retained column",
			goerr.V(SheetKindKey, s.Kind), goerr.V(ColumnKey, s.JoinKey))
	}

	return nil
}

// SchemaRegistry holds the sheet schemas of a workbook layout in registration order
type SchemaRegistry struct {
	entries map[types.SheetKind]*SheetSchema
	order   []types.SheetKind
}

// NewSchemaRegistry creates a new empty SchemaRegistry
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		entries: make(map[types.SheetKind]*SheetSchema),
	}
}

// Register validates and stores a schema, replacing any schema of the same kind
func (r *SchemaRegistry) Register(schema *SheetSchema) error {
	if err := schema.Validate(); err != nil {
		return goerr.Wrap(err, "failed to register sheet schema")
	}
	if _, exists := r.entries[schema.Kind]; !exists {
		r.order = append(r.order, schema.Kind)
	}
	r.entries[schema.Kind] = schema.Clone()
	return nil
}

// Get returns a copy of the schema registered for kind
func (r *SchemaRegistry) Get(kind types.SheetKind) (*SheetSchema, error) {
	schema, ok := r.entries[kind]
	if !ok {
		return nil, goerr.Wrap(ErrSchemaNotFound, "sheet schema not registered", goerr.V(SheetKindKey, kind))
	}
	return schema.Clone(), nil
}

// List returns copies of all schemas in registration order
func (r *SchemaRegistry) List() []*SheetSchema {
	result := make([]*SheetSchema, 0, len(r.order))
	for _, kind := range r.order {
		result = append(result, r.entries[kind].Clone())
	}
	return result
}

// Default sheet names of the register template
const (
	DefaultRiskMapSheet       = "Mapa de Riscos"
	DefaultResponsePlanSheet  = "Plano de Respostas"
	DefaultIndicatorPlanSheet = "Plano de Ação"
)

// DefaultSchemaRegistry returns the registry for the standard register template
func DefaultSchemaRegistry() *SchemaRegistry {
	r := NewSchemaRegistry()
	for _, s := range []*SheetSchema{RiskMapSchema(), ResponsePlanSchema(), IndicatorPlanSchema()} {
		// built-in schemas are known to be valid
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

func text(id ColumnID, label string) ColumnSpec {
	return ColumnSpec{ID: id, Label: label, Kind: types.ColumnKindText}
}

func number(id ColumnID, label string) ColumnSpec {
	return ColumnSpec{ID: id, Label: label, Kind: types.ColumnKindNumber}
}

func key(id ColumnID, label string) ColumnSpec {
	return ColumnSpec{ID: id, Label: label, Kind: types.ColumnKindKey}
}

func placeholder() ColumnSpec {
	return ColumnSpec{ID: ColumnPlaceholder, Kind: types.ColumnKindText, Placeholder: true}
}

func discarded(id ColumnID, label string) ColumnSpec {
	c := text(id, label)
	c.Discard = true
	return c
}

func filled(c ColumnSpec) ColumnSpec {
	c.FillDown = true
	return c
}

// RiskMapSchema is the risk map layout: a blank column followed by 17 columns
func RiskMapSchema() *SheetSchema {
	return &SheetSchema{
		Kind:      types.SheetKindRiskMap,
		SheetName: DefaultRiskMapSheet,
		HeaderRow: 10,
		JoinKey:   ColumnStrategicAction,
		Columns: []ColumnSpec{
			placeholder(),
			key(ColumnStrategicAction, "Strategic Action"),
			key(ColumnRiskEvent, "Risk Event"),
			text(ColumnCauses, "Causes"),
			text(ColumnConsequences, "Consequences"),
			text(ColumnCategory, "Classification"),
			text(ColumnRiskOwner, "Risk Owner"),
			number(ColumnProbability, "Probability (GP)"),
			number(ColumnImpact, "Impact (GI)"),
			number(ColumnInherentLevel, "Inherent Risk Level"),
			text(ColumnInherentClassification, "Inherent Risk Evaluation"),
			text(ColumnControlDescription, "Control Description"),
			text(ColumnControlLevel, "Control Level"),
			number(ColumnControlWeight, "Control Weight"),
			number(ColumnResidualLevel, "Residual Risk Level"),
			text(ColumnResidualClassification, "Residual Risk Evaluation"),
			text(ColumnResponseStrategy, "Risk Response"),
			text(ColumnResponsePlan, "Response Plan"),
		},
	}
}

// ResponsePlanSchema is the response plan layout: a blank column followed by 11 columns
func ResponsePlanSchema() *SheetSchema {
	return &SheetSchema{
		Kind:      types.SheetKindResponsePlan,
		SheetName: DefaultResponsePlanSheet,
		HeaderRow: 9,
		JoinKey:   ColumnStrategicAction,
		Columns: []ColumnSpec{
			placeholder(),
			key(ColumnStrategicAction, "Strategic Action"),
			key(ColumnRiskEvent, "Risk Event"),
			text(ColumnCauses, "Causes"),
			text(ColumnResponseType, "Response"),
			text(ColumnWhat, "What (Action)"),
			text(ColumnWhen, "When (Deadline)"),
			text(ColumnWhere, "Where (Location)"),
			text(ColumnWhy, "Why (Justification)"),
			text(ColumnWho, "Who (Responsible)"),
			text(ColumnHow, "How (Detail)"),
			text(ColumnEstimatedCost, "Estimated Cost"),
		},
	}
}

// IndicatorPlanSchema is the indicator plan layout: 28 positional columns of
// which the first nine after the blank column are kept.
func IndicatorPlanSchema() *SheetSchema {
	columns := []ColumnSpec{
		placeholder(),
		filled(text(ColumnObjective, "Objective")),
		filled(text(ColumnInitiative, "Initiative")),
		filled(key(ColumnStrategicAction, "Strategic Action")),
		text(ColumnIndicator, "Indicator"),
		text(ColumnFormula, "Formula"),
		text(ColumnUnit, "Unit"),
		text(ColumnBaseline, "Baseline"),
		text(ColumnTarget, "Target"),
		text(ColumnParameter, "Parameter"),
		discarded(ColumnIndicatorOwner, "Indicator Owner"),
		discarded(ColumnFrequency, "Frequency"),
		discarded(ColumnDataSource, "Data Source"),
		discarded(ColumnPolarity, "Polarity"),
	}
	for i := 1; i <= 12; i++ {
		columns = append(columns, discarded(TrackingColumn(i), "Tracking"))
	}
	columns = append(columns,
		discarded(ColumnNotes, "Notes"),
		discarded(ColumnStatus, "Status"),
	)

	return &SheetSchema{
		Kind:      types.SheetKindIndicatorPlan,
		SheetName: DefaultIndicatorPlanSheet,
		HeaderRow: 10,
		JoinKey:   ColumnStrategicAction,
		Columns:   columns,
	}
}

// TrackingColumn returns the ID of the n-th monthly tracking column of the indicator plan
func TrackingColumn(n int) ColumnID {
	return ColumnID(fmt.Sprintf("tracking_%02d", n))
}
