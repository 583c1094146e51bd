package types

import "fmt"

// SheetKind identifies a logical sheet of a register workbook
type SheetKind string

const (
	SheetKindRiskMap       SheetKind = "risk_map"
	SheetKindResponsePlan  SheetKind = "response_plan"
	SheetKindIndicatorPlan SheetKind = "indicator_plan"
)

// AllSheetKinds returns all sheet kinds in load order
func AllSheetKinds() []SheetKind {
	return []SheetKind{
		SheetKindRiskMap,
		SheetKindResponsePlan,
		SheetKindIndicatorPlan,
	}
}

// IsValid checks if the sheet kind is valid
func (k SheetKind) IsValid() bool {
	switch k {
	case SheetKindRiskMap, SheetKindResponsePlan, SheetKindIndicatorPlan:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sheet kind
func (k SheetKind) String() string {
	return string(k)
}

// ParseSheetKind parses a string into a SheetKind
func ParseSheetKind(s string) (SheetKind, error) {
	kind := SheetKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid sheet kind: %s", s)
	}
	return kind, nil
}

// ColumnKind describes how a column's cells are normalized during ingestion
type ColumnKind string

const (
	ColumnKindText   ColumnKind = "text"
	ColumnKindNumber ColumnKind = "number"
	// ColumnKindKey is a join key column: text with surrounding whitespace trimmed
	ColumnKindKey ColumnKind = "key"
)

// IsValid checks if the column kind is valid
func (k ColumnKind) IsValid() bool {
	switch k {
	case ColumnKindText, ColumnKindNumber, ColumnKindKey:
		return true
	default:
		return false
	}
}
