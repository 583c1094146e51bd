package model

import (
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

// Table is a validated sheet: positional columns with normalized cells.
// It is never modified after construction; accessors return copies.
type Table struct {
	kind       types.SheetKind
	sheet      string
	columns    []ColumnID
	index      map[ColumnID]int
	rows       [][]Value
	sourceRows []int
}

// NewTable builds a Table. sourceRows holds the 1-based spreadsheet row of each
// row and may be nil. Inputs are copied.
func NewTable(kind types.SheetKind, sheet string, columns []ColumnID, rows [][]Value, sourceRows []int) *Table {
	t := &Table{
		kind:       kind,
		sheet:      sheet,
		columns:    make([]ColumnID, len(columns)),
		index:      make(map[ColumnID]int, len(columns)),
		rows:       make([][]Value, len(rows)),
		sourceRows: make([]int, len(rows)),
	}
	copy(t.columns, columns)
	for i, c := range columns {
		t.index[c] = i
	}
	for i, row := range rows {
		cells := make([]Value, len(columns))
		copy(cells, row)
		t.rows[i] = cells
		if i < len(sourceRows) {
			t.sourceRows[i] = sourceRows[i]
		}
	}
	return t
}

// Kind returns the logical sheet kind
func (t *Table) Kind() types.SheetKind {
	return t.kind
}

// SheetName returns the name of the sheet the table was read from
func (t *Table) SheetName() string {
	return t.sheet
}

// Columns returns the column IDs in order
func (t *Table) Columns() []ColumnID {
	cols := make([]ColumnID, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// HasColumn reports whether the table retains col
func (t *Table) HasColumn(col ColumnID) bool {
	_, ok := t.index[col]
	return ok
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row
func (t *Table) Row(i int) Row {
	return Row{table: t, idx: i}
}

// Rows returns all rows in order
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i := range t.rows {
		rows[i] = Row{table: t, idx: i}
	}
	return rows
}

// Records returns rows as column ID to value maps, for presentation
func (t *Table) Records() []map[ColumnID]Value {
	result := make([]map[ColumnID]Value, len(t.rows))
	for i, row := range t.rows {
		m := make(map[ColumnID]Value, len(t.columns))
		for j, c := range t.columns {
			m[c] = row[j]
		}
		result[i] = m
	}
	return result
}

// Row is a read-only view of a table row
type Row struct {
	table *Table
	idx   int
}

// Get returns the cell of col; unknown columns yield a missing value
func (r Row) Get(col ColumnID) Value {
	i, ok := r.table.index[col]
	if !ok {
		return MissingValue()
	}
	return r.table.rows[r.idx][i]
}

// Text is a shorthand for Get(col).Text()
func (r Row) Text(col ColumnID) string {
	return r.Get(col).Text()
}

// SourceRow returns the 1-based spreadsheet row the row was read from, or 0
func (r Row) SourceRow() int {
	return r.table.sourceRows[r.idx]
}
