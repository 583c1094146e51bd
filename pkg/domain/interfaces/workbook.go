package interfaces

// WorkbookSource gives raw access to the sheets of an uploaded workbook
type WorkbookSource interface {
	// Name returns the file name the workbook was uploaded as
	Name() string

	// SheetNames returns the sheet names in workbook order
	SheetNames() []string

	// Rows returns the raw cell text of every row of a sheet, top to bottom.
	// Trailing empty cells may be omitted; empty rows are returned as empty slices.
	Rows(sheet string) ([][]string, error)

	// TextRows returns the same grid as Rows with cells that are displayed as
	// dates rendered as ISO dates rather than serial numbers.
	TextRows(sheet string) ([][]string, error)
}
