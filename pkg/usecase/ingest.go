package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
)

// DefaultErrorToken is the spreadsheet broken-reference marker
const DefaultErrorToken = "#REF!"

type IngestUseCase struct {
	registry     *model.SchemaRegistry
	integrated   bool
	noPlanTokens []string
	errorToken   string
}

type IngestOption func(*IngestUseCase)

// WithIntegrated makes the indicator plan a required sheet
func WithIntegrated(enabled bool) IngestOption {
	return func(uc *IngestUseCase) {
		uc.integrated = enabled
	}
}

// WithNoPlanTokens sets the response plan cell values meaning "no plan"
func WithNoPlanTokens(tokens []string) IngestOption {
	return func(uc *IngestUseCase) {
		uc.noPlanTokens = append([]string{}, tokens...)
	}
}

// WithErrorToken sets the cell value treated as a broken reference
func WithErrorToken(token string) IngestOption {
	return func(uc *IngestUseCase) {
		uc.errorToken = token
	}
}

func NewIngestUseCase(registry *model.SchemaRegistry, opts ...IngestOption) *IngestUseCase {
	uc := &IngestUseCase{
		registry:     registry,
		noPlanTokens: model.DefaultNoPlanTokens,
		errorToken:   DefaultErrorToken,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Integrated reports whether the indicator plan is loaded
func (uc *IngestUseCase) Integrated() bool {
	return uc.integrated
}

// Schemas returns the sheet schemas this use case loads, in load order
func (uc *IngestUseCase) Schemas() ([]*model.SheetSchema, error) {
	kinds := []types.SheetKind{types.SheetKindRiskMap, types.SheetKindResponsePlan}
	if uc.integrated {
		kinds = append(kinds, types.SheetKindIndicatorPlan)
	}

	schemas := make([]*model.SheetSchema, 0, len(kinds))
	for _, kind := range kinds {
		s, err := uc.registry.Get(kind)
		if err != nil {
			return nil, goerr.Wrap(err, "workbook layout is incomplete")
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// Load validates every required sheet of src and builds the table set.
// Either all sheets load or the whole workbook is rejected.
func (uc *IngestUseCase) Load(ctx context.Context, src interfaces.WorkbookSource) (*model.TableSet, error) {
	schemas, err := uc.Schemas()
	if err != nil {
		return nil, err
	}

	var (
		tables     []*model.Table
		risks      []model.RiskRecord
		plans      []model.ResponsePlanRecord
		indicators []model.IndicatorRecord
	)

	for _, schema := range schemas {
		table, err := uc.LoadTable(ctx, src, schema)
		if err != nil {
			return nil, goerr.Wrap(err, "workbook rejected", goerr.V("workbook", src.Name()))
		}
		tables = append(tables, table)

		switch schema.Kind {
		case types.SheetKindRiskMap:
			risks, err = uc.riskRecords(table)
			if err != nil {
				return nil, goerr.Wrap(err, "workbook rejected", goerr.V("workbook", src.Name()))
			}
		case types.SheetKindResponsePlan:
			plans = planRecords(table)
		case types.SheetKindIndicatorPlan:
			indicators = indicatorRecords(table)
		}
	}

	ts := model.NewTableSet(src.Name(), tables, risks, plans, indicators)
	logging.From(ctx).Info("workbook loaded",
		"workbook", src.Name(),
		"risks", len(risks),
		"plans", len(plans),
		"indicators", len(indicators),
		"integrated", ts.Integrated(),
	)
	return ts, nil
}

// LoadTable reads one sheet according to its positional schema and applies
// the normalization steps: blank rows dropped, error tokens cleared, keys
// trimmed, grouping columns filled down, keyless rows dropped, numbers coerced.
func (uc *IngestUseCase) LoadTable(ctx context.Context, src interfaces.WorkbookSource, schema *model.SheetSchema) (*model.Table, error) {
	fail := func(row int, reason string, err error) error {
		return &model.IngestionError{
			Kind:   schema.Kind,
			Sheet:  schema.SheetName,
			Row:    row,
			Reason: reason,
			Err:    err,
		}
	}

	if !hasSheet(src, schema.SheetName) {
		return nil, fail(0, "sheet was not found in the workbook",
			goerr.Wrap(model.ErrSheetNotFound, "sheet not found",
				goerr.V(model.SheetKey, schema.SheetName),
				goerr.V("available", src.SheetNames())))
	}

	raw, err := src.Rows(schema.SheetName)
	if err != nil {
		return nil, fail(0, "sheet could not be read", err)
	}
	text, err := src.TextRows(schema.SheetName)
	if err != nil {
		return nil, fail(0, "sheet could not be read", err)
	}

	headerIdx := schema.HeaderRow - 1
	var region, textRegion [][]string
	if headerIdx < len(raw) {
		region = raw[headerIdx:]
	}
	if headerIdx < len(text) {
		textRegion = text[headerIdx:]
	}

	expected := len(schema.Columns)
	if width := sheetWidth(region); width != expected {
		return nil, fail(0, fmt.Sprintf("expected %d columns from row %d but found %d", expected, schema.HeaderRow, width),
			goerr.Wrap(model.ErrSchemaMismatch, "column count mismatch",
				goerr.V(model.SheetKey, schema.SheetName),
				goerr.V(model.ExpectedKey, expected),
				goerr.V(model.ActualKey, width)))
	}

	var (
		rows       [][]model.Value
		sourceRows []int
	)
	for i, r := range region {
		if i == 0 || isBlankRow(r) {
			continue
		}
		var t []string
		if i < len(textRegion) {
			t = textRegion[i]
		}
		rows = append(rows, uc.normalizeRow(schema, r, t))
		sourceRows = append(sourceRows, schema.HeaderRow+i)
	}

	fillDown(schema, rows)

	keyIdx := columnIndex(schema, schema.JoinKey)
	kept := rows[:0]
	keptSources := sourceRows[:0]
	dropped := 0
	for i, r := range rows {
		if r[keyIdx].IsMissing() {
			dropped++
			logging.From(ctx).Debug("row dropped", "error", model.ErrMissingJoinKey.Error(),
				"sheet", schema.SheetName, "row", sourceRows[i], "column", schema.JoinKey)
			continue
		}
		kept = append(kept, r)
		keptSources = append(keptSources, sourceRows[i])
	}

	coerceNumbers(schema, kept)

	retained := schema.RetainedColumns()
	projected := make([][]model.Value, len(kept))
	for i, r := range kept {
		projected[i] = project(schema, r)
	}

	logging.From(ctx).Debug("sheet loaded",
		"sheet", schema.SheetName,
		"kind", schema.Kind,
		"rows", len(projected),
		"dropped", dropped,
	)

	return model.NewTable(schema.Kind, schema.SheetName, retained, projected, keptSources), nil
}

func hasSheet(src interfaces.WorkbookSource, name string) bool {
	for _, s := range src.SheetNames() {
		if s == name {
			return true
		}
	}
	return false
}

// sheetWidth returns the number of columns spanned by the header and data rows
func sheetWidth(rows [][]string) int {
	width := 0
	for _, r := range rows {
		for i := len(r) - 1; i >= 0; i-- {
			if r[i] != "" {
				if i+1 > width {
					width = i + 1
				}
				break
			}
		}
	}
	return width
}

func isBlankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func columnIndex(schema *model.SheetSchema, id model.ColumnID) int {
	for i, c := range schema.Columns {
		if c.ID == id && !c.Placeholder {
			return i
		}
	}
	return -1
}

// normalizeRow reads numeric columns from the raw row and every other column
// from the text row, where dates are already rendered.
func (uc *IngestUseCase) normalizeRow(schema *model.SheetSchema, raw, text []string) []model.Value {
	cells := make([]model.Value, len(schema.Columns))
	for i, spec := range schema.Columns {
		r := text
		if spec.Kind == types.ColumnKindNumber {
			r = raw
		}
		var s string
		if i < len(r) {
			s = r[i]
		}
		if uc.errorToken != "" && strings.TrimSpace(s) == uc.errorToken {
			continue
		}
		if spec.Kind == types.ColumnKindKey {
			s = strings.TrimSpace(s)
		}
		cells[i] = model.TextValue(s)
	}
	return cells
}

// fillDown reconstructs values a spreadsheet stores once per merged cell group
func fillDown(schema *model.SheetSchema, rows [][]model.Value) {
	for i, spec := range schema.Columns {
		if !spec.FillDown {
			continue
		}
		last := model.MissingValue()
		for _, r := range rows {
			if r[i].IsMissing() {
				r[i] = last
				continue
			}
			last = r[i]
		}
	}
}

// coerceNumbers converts numeric columns; unparsable cells become missing
func coerceNumbers(schema *model.SheetSchema, rows [][]model.Value) {
	for i, spec := range schema.Columns {
		if spec.Kind != types.ColumnKindNumber {
			continue
		}
		for _, r := range rows {
			r[i] = parseNumber(r[i])
		}
	}
}

func parseNumber(v model.Value) model.Value {
	if v.IsMissing() {
		return v
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return model.MissingValue()
	}
	return model.NumberValue(f)
}

func project(schema *model.SheetSchema, r []model.Value) []model.Value {
	out := make([]model.Value, 0, len(r))
	for i, spec := range schema.Columns {
		if spec.Retained() {
			out = append(out, r[i])
		}
	}
	return out
}
