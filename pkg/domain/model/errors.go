package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

// Ingestion and lookup errors
var (
	ErrSheetNotFound   = goerr.New("sheet not found")
	ErrSchemaMismatch  = goerr.New("column count does not match sheet schema")
	ErrMissingJoinKey  = goerr.New("row has no join key")
	ErrSchemaNotFound  = goerr.New("sheet schema not registered")
	ErrInvalidSchema   = goerr.New("invalid sheet schema")
	ErrRiskNotFound    = goerr.New("risk event not found")
	ErrMissingInherent = goerr.New("inherent level is missing and cannot be derived")
	ErrInvalidSession  = goerr.New("invalid session ID")
	ErrSessionNotFound = goerr.New("session not found")
)

// Context keys for error values
const (
	SheetKey        = "sheet"
	SheetKindKey    = "sheet_kind"
	RowKey          = "row"
	ColumnKey       = "column"
	ExpectedKey     = "expected"
	ActualKey       = "actual"
	RiskEventKey    = "risk_event"
	ControlLevelKey = "control_level"
	SessionIDKey    = "session_id"
)

// IngestionError reports why a sheet was rejected. Its message is meant for
// the person who uploaded the workbook; the wrapped error keeps the details.
type IngestionError struct {
	Kind   types.SheetKind
	Sheet  string
	Row    int
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("sheet %q (%s), row %d: %s", e.Sheet, e.Kind, e.Row, e.Reason)
	}
	return fmt.Sprintf("sheet %q (%s): %s", e.Sheet, e.Kind, e.Reason)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}
