package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
	"github.com/secmon-lab/riskdeck/pkg/service/workbook"
	"github.com/secmon-lab/riskdeck/pkg/service/workbook/workbooktest"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
)

func newIngest(opts ...usecase.IngestOption) *usecase.IngestUseCase {
	return usecase.NewIngestUseCase(model.DefaultSchemaRegistry(), opts...)
}

func TestIngest_LoadRegister(t *testing.T) {
	ctx := context.Background()
	src := workbooktest.NewSource("register.xlsx", workbooktest.Register()...)

	ts, err := newIngest(usecase.WithIntegrated(true)).Load(ctx, src)
	gt.NoError(t, err).Required()

	gt.Value(t, ts.Source()).Equal("register.xlsx")
	gt.Bool(t, ts.Integrated()).True()

	risks := ts.Risks()
	gt.A(t, risks).Length(3).Required()

	t.Run("rows keep sheet order and spreadsheet row numbers", func(t *testing.T) {
		gt.Value(t, risks[0].RiskEvent).Equal("Data breach")
		gt.Value(t, risks[0].Row).Equal(11)
		gt.Value(t, risks[1].RiskEvent).Equal("Service outage")
		gt.Value(t, risks[1].Row).Equal(12)
		gt.Value(t, risks[2].RiskEvent).Equal("Supplier default")
		gt.Value(t, risks[2].Row).Equal(14)
	})

	t.Run("numeric columns are coerced", func(t *testing.T) {
		gt.Value(t, risks[0].Probability).Equal(model.Some(3))
		gt.Value(t, risks[0].Impact).Equal(model.Some(4))
		gt.Value(t, risks[0].InherentLevel).Equal(model.Some(12))
		gt.Value(t, risks[0].ControlWeight).Equal(model.Some(0.4))
		gt.Value(t, risks[0].ResidualLevel).Equal(model.Some(4.8))
	})

	t.Run("labels are parsed", func(t *testing.T) {
		gt.Value(t, risks[0].ControlLevel).Equal(types.ControlLevelSatisfactory)
		gt.Value(t, risks[0].ControlTag).Equal("SATISFATÓRIO")
		gt.Value(t, risks[0].InherentClassification).Equal(types.ClassificationUnacceptable)
		gt.Value(t, risks[0].ResidualClassification).Equal(types.ClassificationManageable)
		gt.Value(t, risks[2].ControlLevel).Equal(types.ControlLevelStrong)
	})

	t.Run("has-plan flag follows the no-plan tokens", func(t *testing.T) {
		gt.Bool(t, risks[0].HasResponsePlan).True()
		gt.Bool(t, risks[1].HasResponsePlan).True()
		gt.Bool(t, risks[2].HasResponsePlan).False()
	})

	t.Run("response plan rows are mapped", func(t *testing.T) {
		plans := ts.Plans()
		gt.A(t, plans).Length(3).Required()
		gt.Value(t, plans[0].Row).Equal(10)
		gt.Value(t, plans[0].Action).Equal("Deploy DLP")
		gt.Value(t, plans[0].Responsible).Equal("Risk office")
		gt.Value(t, plans[0].EstimatedCost).Equal("R$ 10.000")
	})

	t.Run("indicator grouping cells are filled down", func(t *testing.T) {
		indicators := ts.Indicators()
		gt.A(t, indicators).Length(3).Required()
		gt.Value(t, indicators[1].Title).Equal("Availability")
		gt.Value(t, indicators[1].StrategicAction).Equal("Expand digital services")
		gt.Value(t, indicators[1].Objective).Equal("Grow digital revenue")
		gt.Value(t, indicators[1].Initiative).Equal("Digital channels")
		gt.Value(t, indicators[2].StrategicAction).Equal("Modernize procurement")
	})

	t.Run("indicator tables keep only the leading columns", func(t *testing.T) {
		table, ok := ts.Table(types.SheetKindIndicatorPlan)
		gt.Bool(t, ok).True().Required()
		gt.A(t, table.Columns()).Length(9)
		gt.Bool(t, table.HasColumn(model.ColumnPlaceholder)).False()
		gt.Bool(t, table.HasColumn(model.ColumnNotes)).False()
		gt.Bool(t, table.HasColumn(model.ColumnParameter)).True()
	})
}

func TestIngest_NotIntegrated(t *testing.T) {
	ctx := context.Background()
	sheets := workbooktest.Register()[:2]
	src := workbooktest.NewSource("register.xlsx", sheets...)

	ts, err := newIngest().Load(ctx, src)
	gt.NoError(t, err).Required()
	gt.Bool(t, ts.Integrated()).False()
	gt.A(t, ts.Indicators()).Length(0)

	_, ok := ts.Table(types.SheetKindIndicatorPlan)
	gt.Bool(t, ok).False()
}

func TestIngest_MissingSheet(t *testing.T) {
	ctx := context.Background()
	src := workbooktest.NewSource("register.xlsx", workbooktest.Register()[:2]...)

	_, err := newIngest(usecase.WithIntegrated(true)).Load(ctx, src)
	gt.Error(t, err).Is(model.ErrSheetNotFound)

	var ie *model.IngestionError
	gt.Bool(t, errors.As(err, &ie)).True().Required()
	gt.Value(t, ie.Kind).Equal(types.SheetKindIndicatorPlan)
	gt.Value(t, ie.Sheet).Equal(model.DefaultIndicatorPlanSheet)
}

func TestIngest_SchemaMismatch(t *testing.T) {
	ctx := context.Background()

	testCases := map[string]workbooktest.Sheet{
		"extra column": workbooktest.RiskMap(
			append(workbooktest.RiskRow("A", "E", "O", "C", 1, 1, "FORTE", 0.2, "Aceitável", "Sim"), "extra"),
		),
		"missing column": {
			Name:      model.DefaultRiskMapSheet,
			HeaderRow: 10,
			Header:    workbooktest.Header(17),
			Rows: [][]string{
				workbooktest.RiskRow("A", "E", "O", "C", 1, 1, "FORTE", 0.2, "Aceitável", "Sim")[:17],
			},
		},
		"empty sheet": {
			Name:      model.DefaultRiskMapSheet,
			HeaderRow: 10,
		},
	}

	for name, riskMap := range testCases {
		t.Run(name, func(t *testing.T) {
			src := workbooktest.NewSource("register.xlsx", riskMap, workbooktest.ResponsePlan())
			_, err := newIngest().Load(ctx, src)
			gt.Error(t, err).Is(model.ErrSchemaMismatch)

			var ie *model.IngestionError
			gt.Bool(t, errors.As(err, &ie)).True().Required()
			gt.Value(t, ie.Kind).Equal(types.SheetKindRiskMap)
			gt.String(t, ie.Error()).Contains("expected 18 columns")
		})
	}
}

func TestIngest_DropsRowsWithoutStrategicAction(t *testing.T) {
	ctx := context.Background()
	src := workbooktest.NewSource("register.xlsx",
		workbooktest.RiskMap(
			workbooktest.RiskRow("Action", "Kept", "O", "C", 2, 2, "FORTE", 0.2, "Aceitável", "Sim"),
			workbooktest.RiskRow("", "No action", "O", "C", 2, 2, "FORTE", 0.2, "Aceitável", "Sim"),
			workbooktest.RiskRow("   ", "Blank action", "O", "C", 2, 2, "FORTE", 0.2, "Aceitável", "Sim"),
			workbooktest.RiskRow("#REF!", "Broken action", "O", "C", 2, 2, "FORTE", 0.2, "Aceitável", "Sim"),
		),
		workbooktest.ResponsePlan(),
	)

	ts, err := newIngest().Load(ctx, src)
	gt.NoError(t, err).Required()

	risks := ts.Risks()
	gt.A(t, risks).Length(1).Required()
	gt.Value(t, risks[0].RiskEvent).Equal("Kept")
	gt.A(t, ts.Plans()).Length(0)
}

func TestIngest_Normalization(t *testing.T) {
	ctx := context.Background()

	row := workbooktest.RiskRow("  Action  ", "  Event  ", "#REF!", "C", 2, 2, "", 0.2, "Aceitável", "")
	row[7] = "two"       // probability
	row[14] = " #REF! " // residual level
	row[13] = "NaN"     // control weight

	src := workbooktest.NewSource("register.xlsx",
		workbooktest.RiskMap(row),
		workbooktest.ResponsePlan(),
	)

	ts, err := newIngest().Load(ctx, src)
	gt.NoError(t, err).Required()
	risks := ts.Risks()
	gt.A(t, risks).Length(1).Required()
	r := risks[0]

	gt.Value(t, r.StrategicAction).Equal("Action")
	gt.Value(t, r.RiskEvent).Equal("Event")
	gt.Value(t, r.Owner).Equal("")
	gt.Bool(t, r.Probability.Valid).False()
	gt.Bool(t, r.Impact.Valid).True()
	gt.Bool(t, r.ControlWeight.Valid).False()
	gt.Bool(t, r.ResidualLevel.Valid).False()
	gt.Value(t, r.ControlLevel).Equal(types.ControlLevel(""))
	gt.Bool(t, r.HasResponsePlan).True()
}

func TestIngest_UnknownControlLevel(t *testing.T) {
	ctx := context.Background()
	src := workbooktest.NewSource("register.xlsx",
		workbooktest.RiskMap(
			workbooktest.RiskRow("Action", "Event", "O", "C", 2, 2, "FORTE", 0.2, "Aceitável", "Sim"),
			workbooktest.RiskRow("Action", "Other", "O", "C", 2, 2, "EXCELENTE", 0.2, "Aceitável", "Sim"),
		),
		workbooktest.ResponsePlan(),
	)

	_, err := newIngest().Load(ctx, src)
	gt.Error(t, err).Is(types.ErrUnknownControlLevel)

	var ie *model.IngestionError
	gt.Bool(t, errors.As(err, &ie)).True().Required()
	gt.Value(t, ie.Row).Equal(12)
	gt.String(t, ie.Error()).Contains("EXCELENTE")
}

func TestIngest_NoPlanTokens(t *testing.T) {
	ctx := context.Background()
	src := workbooktest.NewSource("register.xlsx",
		workbooktest.RiskMap(
			workbooktest.RiskRow("Action", "A", "O", "C", 2, 2, "FORTE", 0.2, "Aceitável", "nao"),
			workbooktest.RiskRow("Action", "B", "O", "C", 2, 2, "FORTE", 0.2, "Aceitável", "Pendente"),
		),
		workbooktest.ResponsePlan(),
	)

	t.Run("default tokens", func(t *testing.T) {
		ts, err := newIngest().Load(ctx, src)
		gt.NoError(t, err).Required()
		risks := ts.Risks()
		gt.Bool(t, risks[0].HasResponsePlan).False()
		gt.Bool(t, risks[1].HasResponsePlan).True()
	})

	t.Run("custom tokens", func(t *testing.T) {
		ts, err := newIngest(usecase.WithNoPlanTokens([]string{"Pendente"})).Load(ctx, src)
		gt.NoError(t, err).Required()
		risks := ts.Risks()
		gt.Bool(t, risks[0].HasResponsePlan).True()
		gt.Bool(t, risks[1].HasResponsePlan).False()
	})
}

func TestIngest_Deterministic(t *testing.T) {
	ctx := context.Background()
	src := workbooktest.NewSource("register.xlsx", workbooktest.Register()...)
	uc := newIngest(usecase.WithIntegrated(true))

	first, err := uc.Load(ctx, src)
	gt.NoError(t, err).Required()
	second, err := uc.Load(ctx, src)
	gt.NoError(t, err).Required()

	gt.Value(t, second.Risks()).Equal(first.Risks())
	gt.Value(t, second.Plans()).Equal(first.Plans())
	gt.Value(t, second.Indicators()).Equal(first.Indicators())
}

func TestIngest_LayoutIncomplete(t *testing.T) {
	ctx := context.Background()
	registry := model.NewSchemaRegistry()
	gt.NoError(t, registry.Register(model.RiskMapSchema())).Required()

	src := workbooktest.NewSource("register.xlsx", workbooktest.Register()...)
	_, err := usecase.NewIngestUseCase(registry).Load(ctx, src)
	gt.Error(t, err).Is(model.ErrSchemaNotFound)
}

func TestIngest_DateCellsInTextColumns(t *testing.T) {
	ctx := context.Background()
	sheets := workbooktest.Register()
	sheets[1].Dates = map[string]time.Time{
		"G10": time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	wb, err := workbook.Open(ctx, "register.xlsx", bytes.NewReader(workbooktest.XLSX(t, sheets...)))
	gt.NoError(t, err).Required()
	defer wb.Close() //nolint:errcheck

	ts, err := newIngest().Load(ctx, wb)
	gt.NoError(t, err).Required()

	plans := ts.Plans()
	gt.A(t, plans).Length(3).Required()
	gt.Value(t, plans[0].Timing).Equal("2025-12-31")
	gt.Value(t, plans[1].Timing).Equal("2025-12")

	// numeric columns still read stored values
	gt.Value(t, ts.Risks()[0].ResidualLevel).Equal(model.Some(4.8))
}
