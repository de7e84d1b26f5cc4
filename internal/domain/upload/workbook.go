package upload

// Sheet is a fully materialized spreadsheet tab. Rows[0] is the header row
// when present.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the trimmed value at col for the given row, tolerating short
// rows.
func (s Sheet) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Workbook is a parsed spreadsheet file.
type Workbook struct {
	Sheets []Sheet
}

// Sheet looks up a tab by exact name.
func (w Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// WorkbookOpener parses raw file bytes into a Workbook.
type WorkbookOpener interface {
	Open(data []byte) (Workbook, error)
}
