package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
	"github.com/secmon-lab/riskdeck/pkg/service/workbook/workbooktest"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
)

func loadPortfolio(t *testing.T, sheets ...workbooktest.Sheet) *usecase.Portfolio {
	t.Helper()
	src := workbooktest.NewSource("register.xlsx", sheets...)
	ts, err := newIngest(usecase.WithIntegrated(len(sheets) > 2)).Load(context.Background(), src)
	gt.NoError(t, err).Required()
	return usecase.NewPortfolio(ts)
}

func TestPortfolio_Summary(t *testing.T) {
	p := loadPortfolio(t, workbooktest.Register()...)
	s := p.Summary()

	gt.Value(t, s.Total).Equal(3)
	gt.Value(t, s.InherentUnacceptable).Equal(2)
	gt.Value(t, s.ResidualUnacceptable).Equal(1)
	gt.Value(t, s.Reduction).Equal(1)

	gt.Value(t, s.Heatmap.At(3, 4)).Equal(1)
	gt.Value(t, s.Heatmap.At(4, 4)).Equal(1)
	gt.Value(t, s.Heatmap.At(3, 3)).Equal(1)
	gt.Value(t, s.Heatmap.At(1, 1)).Equal(0)
	gt.Value(t, s.Heatmap.At(0, 5)).Equal(0)

	gt.A(t, s.Residual).Length(4).Required()
	gt.Value(t, s.Residual[0]).Equal(usecase.ClassificationCount{
		Classification: types.ClassificationAcceptable, Label: "Acceptable", Count: 1,
	})
	gt.Value(t, s.Residual[1].Count).Equal(1)
	gt.Value(t, s.Residual[2].Count).Equal(0)
	gt.Value(t, s.Residual[3].Count).Equal(1)

	gt.Value(t, s.ByCategory).Equal([]usecase.Count{
		{Key: "Operational", Count: 2},
		{Key: "Financial", Count: 1},
	})
	gt.Value(t, s.ByOwner).Equal([]usecase.Count{
		{Key: "CISO", Count: 1},
		{Key: "CTO", Count: 1},
		{Key: "CFO", Count: 1},
	})
}

func TestPortfolio_Summary_SkipsBlankOwnerAndCategory(t *testing.T) {
	unowned := workbooktest.RiskRow("Action", "Unowned", "", "", 2, 2, "FORTE", 0.2, "Aceitável", "Não")
	owned := workbooktest.RiskRow("Action", "Owned", "CISO", "Operational", 2, 2, "FORTE", 0.2, "Aceitável", "Não")

	p := loadPortfolio(t, workbooktest.RiskMap(unowned, owned), workbooktest.ResponsePlan())
	s := p.Summary()

	gt.Value(t, s.Total).Equal(2)
	gt.Value(t, s.ByCategory).Equal([]usecase.Count{{Key: "Operational", Count: 1}})
	gt.Value(t, s.ByOwner).Equal([]usecase.Count{{Key: "CISO", Count: 1}})
	gt.Value(t, p.Owners()).Equal([]string{"CISO"})
}

func TestPortfolio_Summary_ComputedFallback(t *testing.T) {
	row := workbooktest.RiskRow("Action", "Event", "O", "C", 4, 4, "MEDIANO", 0.6, "", "Sim")
	row[10] = "" // inherent evaluation

	p := loadPortfolio(t, workbooktest.RiskMap(row), workbooktest.ResponsePlan())
	s := p.Summary()

	// 16 and 9.6 both classify as unacceptable
	gt.Value(t, s.InherentUnacceptable).Equal(1)
	gt.Value(t, s.ResidualUnacceptable).Equal(1)
}

func TestPortfolio_Risks(t *testing.T) {
	p := loadPortfolio(t, workbooktest.Register()...)

	testCases := map[string]struct {
		filter usecase.Filter
		events []string
	}{
		"no filter": {
			filter: usecase.Filter{},
			events: []string{"Data breach", "Service outage", "Supplier default"},
		},
		"by action": {
			filter: usecase.Filter{Action: "Expand digital services"},
			events: []string{"Data breach", "Service outage"},
		},
		"by owner": {
			filter: usecase.Filter{Owner: "CFO"},
			events: []string{"Supplier default"},
		},
		"by residual classification": {
			filter: usecase.Filter{Residual: types.ClassificationUnacceptable},
			events: []string{"Service outage"},
		},
		"combined without match": {
			filter: usecase.Filter{Owner: "CFO", Residual: types.ClassificationUnacceptable},
			events: nil,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var events []string
			for _, r := range p.Risks(tc.filter) {
				events = append(events, r.RiskEvent)
			}
			gt.Value(t, events).Equal(tc.events)
		})
	}
}

func TestPortfolio_Distinct(t *testing.T) {
	p := loadPortfolio(t, workbooktest.Register()...)

	gt.Value(t, p.RiskEvents()).Equal([]string{"Data breach", "Service outage", "Supplier default"})
	gt.Value(t, p.Actions()).Equal([]string{"Expand digital services", "Modernize procurement"})
	gt.Value(t, p.Owners()).Equal([]string{"CISO", "CTO", "CFO"})
}

func TestPortfolio_Profile(t *testing.T) {
	p := loadPortfolio(t, workbooktest.Register()...)

	t.Run("risk with plan and indicators", func(t *testing.T) {
		profile, err := p.Profile("Data breach")
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Risk.Owner).Equal("CISO")
		gt.Bool(t, profile.Assessment.Consistent()).True()
		gt.Value(t, profile.Plan).NotNil().Required()
		gt.Value(t, profile.Plan.Action).Equal("Deploy DLP")
		gt.A(t, profile.Indicators).Length(2)
	})

	t.Run("plan hidden by the risk flag", func(t *testing.T) {
		profile, err := p.Profile("Supplier default")
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Plan).Nil()
		gt.A(t, profile.Indicators).Length(1)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := p.Profile("Meteor strike")
		gt.Error(t, err).Is(model.ErrRiskNotFound)
	})
}

func TestPortfolio_Simulate(t *testing.T) {
	p := loadPortfolio(t, workbooktest.Register()...)

	t.Run("single level", func(t *testing.T) {
		sims, err := p.Simulate("Data breach", types.ControlLevelStrong)
		gt.NoError(t, err).Required()
		gt.A(t, sims).Length(1).Required()
		gt.Value(t, sims[0].Simulated.ResidualLevel).Equal(2.4)
		gt.Value(t, sims[0].Simulated.ResidualClassification).Equal(types.ClassificationManageable)
		gt.Value(t, sims[0].OriginalResidual).Equal(model.Some(4.8))
		gt.Value(t, sims[0].Delta).Equal(model.Some(-2.4))
	})

	t.Run("all levels", func(t *testing.T) {
		sims, err := p.Simulate("Data breach", "")
		gt.NoError(t, err).Required()
		gt.A(t, sims).Length(5).Required()
		gt.Value(t, sims[0].Simulated.Control).Equal(types.ControlLevelInexistent)
		gt.Value(t, sims[0].Simulated.ResidualLevel).Equal(12.0)
		gt.Value(t, sims[4].Simulated.Control).Equal(types.ControlLevelStrong)
	})

	t.Run("records are not modified", func(t *testing.T) {
		before, err := p.Profile("Data breach")
		gt.NoError(t, err).Required()
		_, err = p.Simulate("Data breach", types.ControlLevelInexistent)
		gt.NoError(t, err).Required()
		after, err := p.Profile("Data breach")
		gt.NoError(t, err).Required()
		gt.Value(t, after.Risk).Equal(before.Risk)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := p.Simulate("Meteor strike", types.ControlLevelStrong)
		gt.Error(t, err).Is(model.ErrRiskNotFound)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := p.Simulate("Data breach", types.ControlLevel("perfect"))
		gt.Error(t, err).Is(types.ErrUnknownControlLevel)
	})
}

func TestPortfolio_Audit(t *testing.T) {
	t.Run("consistent register", func(t *testing.T) {
		p := loadPortfolio(t, workbooktest.Register()...)
		gt.A(t, p.Audit()).Length(0)
	})

	t.Run("inconsistencies are reported", func(t *testing.T) {
		wrongWeight := workbooktest.RiskRow("Action", "Fraud", "O", "C", 2, 3, "FORTE", 0.2, "Manageable", "Sim")
		wrongWeight[13] = "0.6"
		duplicate := workbooktest.RiskRow("Action", "Fraud", "O", "C", 2, 3, "FORTE", 0.2, "Acceptable", "Sim")

		p := loadPortfolio(t,
			workbooktest.RiskMap(wrongWeight, duplicate),
			workbooktest.ResponsePlan(
				workbooktest.PlanRow("Action", "Fraud", "First"),
				workbooktest.PlanRow("Action", "Fraud", "Second"),
			),
		)

		codes := map[model.FindingCode]int{}
		for _, f := range p.Audit() {
			codes[f.Code]++
		}
		gt.Value(t, codes[model.FindingControlWeightMismatch]).Equal(1)
		gt.Value(t, codes[model.FindingResidualClassificationMismatch]).Equal(1)
		gt.Value(t, codes[model.FindingDuplicateRiskEvent]).Equal(1)
		gt.Value(t, codes[model.FindingDuplicatePlan]).Equal(1)
	})
}
