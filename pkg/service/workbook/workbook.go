package workbook

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
	"github.com/xuri/excelize/v2"
)

// ErrUnreadableWorkbook is returned when the upload is not a readable xlsx file
var ErrUnreadableWorkbook = goerr.New("workbook cannot be read")

// Workbook is an xlsx workbook opened with excelize
type Workbook struct {
	name string
	file *excelize.File
}

var _ interfaces.WorkbookSource = &Workbook{}

// Open reads an xlsx workbook from r. The caller must Close it.
func Open(ctx context.Context, name string, r io.Reader) (*Workbook, error) {
	// excelize needs random access; buffer the upload once
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read workbook upload", goerr.V("name", name))
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(ErrUnreadableWorkbook, "failed to open workbook",
			goerr.V("name", name), goerr.V("cause", err.Error()))
	}

	logging.From(ctx).Debug("workbook opened",
		"name", name,
		"bytes", len(data),
		"sheets", f.GetSheetList(),
	)

	return &Workbook{name: name, file: f}, nil
}

// OpenFile opens an xlsx workbook from disk
func OpenFile(ctx context.Context, path string) (*Workbook, error) {
	// #nosec G304 - path is provided by CLI argument
	fd, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open workbook file", goerr.V("path", path))
	}
	defer fd.Close() //nolint:errcheck // read-only

	return Open(ctx, filepath.Base(path), fd)
}

// Name returns the upload name of the workbook
func (w *Workbook) Name() string {
	return w.name
}

// SheetNames returns the sheet names in workbook order
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows returns the raw cell values of a sheet. Raw values keep numbers as
// stored, without the cell number format applied.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read sheet rows", goerr.V("sheet", sheet))
	}
	return rows, nil
}

// TextRows returns the raw cell values of a sheet with date-formatted cells
// rendered as ISO dates instead of serial numbers.
func (w *Workbook) TextRows(sheet string) ([][]string, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}

	props, err := w.file.GetWorkbookProps()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read workbook properties", goerr.V("name", w.name))
	}
	date1904 := props.Date1904 != nil && *props.Date1904

	dateStyles := make(map[int]bool)
	for r, row := range rows {
		for c, v := range row {
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid cell coordinates", goerr.V("sheet", sheet))
			}
			styleID, err := w.file.GetCellStyle(sheet, cell)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to read cell style", goerr.V("sheet", sheet), goerr.V("cell", cell))
			}
			isDate, ok := dateStyles[styleID]
			if !ok {
				isDate = w.isDateStyle(styleID)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			row[c] = formatDate(t)
		}
	}
	return rows, nil
}

// builtinDateFormats are the built-in number format IDs that display dates
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func (w *Workbook) isDateStyle(styleID int) bool {
	if styleID == 0 {
		return false
	}
	style, err := w.file.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return builtinDateFormats[style.NumFmt]
}

// isDateFormatCode reports whether a custom number format shows a year or day.
// Quoted literals and bracketed sections such as colors are ignored.
func isDateFormatCode(code string) bool {
	var (
		quoted  bool
		bracket bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == 'y' || r == 'd':
			return true
		}
	}
	return false
}

func formatDate(t time.Time) string {
	t = t.Round(time.Second)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

// Close releases the excelize file
func (w *Workbook) Close() error {
	if err := w.file.Close(); err != nil {
		return goerr.Wrap(err, "failed to close workbook", goerr.V("name", w.name))
	}
	return nil
}
