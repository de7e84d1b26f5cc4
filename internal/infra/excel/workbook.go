package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/xreal/faqbase/internal/domain/upload"
)

// Opener parses .xlsx bytes into fully materialized sheets.
type Opener struct{}

// NewOpener constructs the opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open reads every sheet eagerly. Cells come back as the values excelize
// renders for display, which matches what authors see in their editor.
func (o *Opener) Open(data []byte) (upload.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return upload.Workbook{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := upload.Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return upload.Workbook{}, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, upload.Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

var _ upload.WorkbookOpener = (*Opener)(nil)
