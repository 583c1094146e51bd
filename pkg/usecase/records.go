package usecase

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

func (uc *IngestUseCase) riskRecords(t *model.Table) ([]model.RiskRecord, error) {
	records := make([]model.RiskRecord, 0, t.Len())
	for _, row := range t.Rows() {
		r := model.RiskRecord{
			Row:                row.SourceRow(),
			StrategicAction:    row.Text(model.ColumnStrategicAction),
			RiskEvent:          row.Text(model.ColumnRiskEvent),
			Causes:             row.Text(model.ColumnCauses),
			Consequences:       row.Text(model.ColumnConsequences),
			Category:           row.Text(model.ColumnCategory),
			Owner:              row.Text(model.ColumnRiskOwner),
			Probability:        model.NumberOf(row.Get(model.ColumnProbability)),
			Impact:             model.NumberOf(row.Get(model.ColumnImpact)),
			InherentLevel:      model.NumberOf(row.Get(model.ColumnInherentLevel)),
			InherentLabel:      row.Text(model.ColumnInherentClassification),
			ControlDescription: row.Text(model.ColumnControlDescription),
			ControlTag:         strings.TrimSpace(row.Text(model.ColumnControlLevel)),
			ControlWeight:      model.NumberOf(row.Get(model.ColumnControlWeight)),
			ResidualLevel:      model.NumberOf(row.Get(model.ColumnResidualLevel)),
			ResidualLabel:      row.Text(model.ColumnResidualClassification),
			ResponseStrategy:   row.Text(model.ColumnResponseStrategy),
			ResponsePlanLabel:  row.Text(model.ColumnResponsePlan),
		}

		if r.ControlTag != "" {
			level, err := types.ParseControlLevel(r.ControlTag)
			if err != nil {
				return nil, &model.IngestionError{
					Kind:   t.Kind(),
					Sheet:  t.SheetName(),
					Row:    r.Row,
					Reason: fmt.Sprintf("control level %q is not one of %s", r.ControlTag, controlLevelLabels()),
					Err: goerr.Wrap(err, "unknown control level",
						goerr.V(model.SheetKey, t.SheetName()),
						goerr.V(model.RowKey, r.Row),
						goerr.V(model.ControlLevelKey, r.ControlTag)),
				}
			}
			r.ControlLevel = level
		}

		// Unrecognized labels stay empty; Assess reports them as findings
		if c, err := types.ParseClassification(r.InherentLabel); err == nil {
			r.InherentClassification = c
		}
		if c, err := types.ParseClassification(r.ResidualLabel); err == nil {
			r.ResidualClassification = c
		}

		r.HasResponsePlan = !isNoPlan(r.ResponsePlanLabel, uc.noPlanTokens)
		records = append(records, r)
	}
	return records, nil
}

func planRecords(t *model.Table) []model.ResponsePlanRecord {
	records := make([]model.ResponsePlanRecord, 0, t.Len())
	for _, row := range t.Rows() {
		records = append(records, model.ResponsePlanRecord{
			Row:             row.SourceRow(),
			StrategicAction: row.Text(model.ColumnStrategicAction),
			RiskEvent:       row.Text(model.ColumnRiskEvent),
			Causes:          row.Text(model.ColumnCauses),
			ResponseType:    row.Text(model.ColumnResponseType),
			Action:          row.Text(model.ColumnWhat),
			Timing:          row.Text(model.ColumnWhen),
			Location:        row.Text(model.ColumnWhere),
			Justification:   row.Text(model.ColumnWhy),
			Responsible:     row.Text(model.ColumnWho),
			Method:          row.Text(model.ColumnHow),
			EstimatedCost:   row.Text(model.ColumnEstimatedCost),
		})
	}
	return records
}

func indicatorRecords(t *model.Table) []model.IndicatorRecord {
	records := make([]model.IndicatorRecord, 0, t.Len())
	for _, row := range t.Rows() {
		records = append(records, model.IndicatorRecord{
			Row:             row.SourceRow(),
			Objective:       row.Text(model.ColumnObjective),
			Initiative:      row.Text(model.ColumnInitiative),
			StrategicAction: row.Text(model.ColumnStrategicAction),
			Title:           row.Text(model.ColumnIndicator),
			Formula:         row.Text(model.ColumnFormula),
			Unit:            row.Text(model.ColumnUnit),
			Baseline:        row.Text(model.ColumnBaseline),
			Target:          row.Text(model.ColumnTarget),
			Parameter:       row.Text(model.ColumnParameter),
		})
	}
	return records
}

func isNoPlan(label string, tokens []string) bool {
	label = strings.TrimSpace(label)
	for _, token := range tokens {
		if strings.EqualFold(label, token) {
			return true
		}
	}
	return false
}

func controlLevelLabels() string {
	levels := types.AllControlLevels()
	labels := make([]string, len(levels))
	for i, l := range levels {
		labels[i] = l.Label()
	}
	return strings.Join(labels, ", ")
}
