// Package workbooktest builds register workbooks for tests.
package workbooktest

import (
	"bytes"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

// Sheet is the content of one sheet: decorative rows, header, then data rows
type Sheet struct {
	Name      string
	HeaderRow int
	Header    []string
	Rows      [][]string
	// Dates are written as date-formatted cells, keyed by cell reference
	Dates map[string]time.Time
}

// Cells returns the sheet content as rows starting at spreadsheet row 1
func (s Sheet) Cells() [][]string {
	var rows [][]string
	for i := 1; i < s.HeaderRow; i++ {
		if i == 1 {
			rows = append(rows, []string{"", "Painel de Gestão de Riscos"})
			continue
		}
		rows = append(rows, []string{})
	}
	rows = append(rows, s.Header)
	rows = append(rows, s.Rows...)
	return rows
}

// Source is an in-memory interfaces.WorkbookSource
type Source struct {
	name   string
	order  []string
	sheets map[string][][]string
}

var _ interfaces.WorkbookSource = &Source{}

// NewSource builds a Source from sheets
func NewSource(name string, sheets ...Sheet) *Source {
	src := &Source{name: name, sheets: make(map[string][][]string)}
	for _, s := range sheets {
		src.order = append(src.order, s.Name)
		src.sheets[s.Name] = s.Cells()
	}
	return src
}

func (s *Source) Name() string { return s.name }

func (s *Source) SheetNames() []string {
	return append([]string{}, s.order...)
}

// TextRows returns the same rows as Rows; a Source holds no cell formats
func (s *Source) TextRows(sheet string) ([][]string, error) {
	return s.Rows(sheet)
}

func (s *Source) Rows(sheet string) ([][]string, error) {
	rows, ok := s.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q does not exist", sheet)
	}
	result := make([][]string, len(rows))
	for i, r := range rows {
		result[i] = append([]string{}, r...)
	}
	return result, nil
}

// XLSX renders sheets into an xlsx file
func XLSX(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("failed to create date style: %v", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("failed to create sheet %q: %v", s.Name, err)
		}

		for r, row := range s.Cells() {
			if len(row) == 0 {
				continue
			}
			cells := make([]interface{}, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("invalid coordinates: %v", err)
			}
			if err := f.SetSheetRow(s.Name, cell, &cells); err != nil {
				t.Fatalf("failed to write row %d of %q: %v", r+1, s.Name, err)
			}
		}

		for cell, date := range s.Dates {
			if err := f.SetCellStyle(s.Name, cell, cell, dateStyle); err != nil {
				t.Fatalf("failed to style %s of %q: %v", cell, s.Name, err)
			}
			if err := f.SetCellValue(s.Name, cell, date); err != nil {
				t.Fatalf("failed to write %s of %q: %v", cell, s.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to render workbook: %v", err)
	}
	return bytes.Clone(buf.Bytes())
}

// RiskRow returns a risk map row with the blank leading column
func RiskRow(action, event, owner, category string, probability, impact int, control string, weight float64, residualLabel string, plan string) []string {
	inherent := probability * impact
	residual := model.RoundLevel(float64(inherent) * weight)
	return []string{
		"",
		action,
		event,
		"causes of " + event,
		"consequences of " + event,
		category,
		owner,
		fmt.Sprint(probability),
		fmt.Sprint(impact),
		fmt.Sprint(inherent),
		classificationLabel(float64(inherent)),
		"controls of " + event,
		control,
		fmt.Sprint(weight),
		strconv.FormatFloat(residual, 'f', -1, 64),
		residualLabel,
		"Mitigar",
		plan,
	}
}

func classificationLabel(level float64) string {
	switch {
	case level <= 2:
		return "Aceitável"
	case level <= 6:
		return "Gerenciável"
	case level <= 9:
		return "Indesejável"
	default:
		return "Inaceitável"
	}
}

// PlanRow returns a response plan row with the blank leading column
func PlanRow(action, event, what string) []string {
	return []string{
		"",
		action,
		event,
		"causes of " + event,
		"Mitigar",
		what,
		"2025-12",
		"Headquarters",
		"Reduce exposure",
		"Risk office",
		"Quarterly review",
		"R$ 10.000",
	}
}

// IndicatorRow returns a 28 column indicator plan row
func IndicatorRow(objective, initiative, action, title string) []string {
	row := []string{"", objective, initiative, action, title, "a/b", "%", "10", "80", "monthly"}
	for len(row) < 28 {
		row = append(row, "x")
	}
	return row
}

// Header returns a decorative header of n cells
func Header(n int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = fmt.Sprintf("Coluna %d", i+1)
	}
	return h
}

// RiskMap returns a risk map sheet with the default layout
func RiskMap(rows ...[]string) Sheet {
	return Sheet{Name: model.DefaultRiskMapSheet, HeaderRow: 10, Header: Header(18), Rows: rows}
}

// ResponsePlan returns a response plan sheet with the default layout
func ResponsePlan(rows ...[]string) Sheet {
	return Sheet{Name: model.DefaultResponsePlanSheet, HeaderRow: 9, Header: Header(12), Rows: rows}
}

// IndicatorPlan returns an indicator plan sheet with the default layout
func IndicatorPlan(rows ...[]string) Sheet {
	return Sheet{Name: model.DefaultIndicatorPlanSheet, HeaderRow: 10, Header: Header(28), Rows: rows}
}

// Register returns the sheets of a small, consistent register
func Register() []Sheet {
	return []Sheet{
		RiskMap(
			RiskRow("Expand digital services", "Data breach", "CISO", "Operational", 3, 4, "SATISFATÓRIO", 0.4, "Gerenciável", "Sim"),
			RiskRow("Expand digital services", "Service outage", "CTO", "Operational", 4, 4, "FRACO", 0.8, "Inaceitável", "Sim"),
			[]string{},
			RiskRow("Modernize procurement", "Supplier default", "CFO", "Financial", 3, 3, "FORTE", 0.2, "Aceitável", "Não"),
		),
		ResponsePlan(
			PlanRow("Expand digital services", "Data breach", "Deploy DLP"),
			PlanRow("Expand digital services", "Service outage", "Add failover region"),
			PlanRow("Modernize procurement", "Supplier default", "Old plan kept by mistake"),
		),
		IndicatorPlan(
			IndicatorRow("Grow digital revenue", "Digital channels", "Expand digital services", "Online share"),
			IndicatorRow("", "", "", "Availability"),
			IndicatorRow("Lower costs", "Smart buying", "Modernize procurement", "Savings"),
		),
	}
}
