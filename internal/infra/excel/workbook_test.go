package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "tag"))
	require.NoError(t, f.SetSheetRow("tag", "A1", &[]any{"Name", "Description", "Active"}))
	require.NoError(t, f.SetSheetRow("tag", "A2", &[]any{"Setup", "getting started", 1}))

	_, err := f.NewSheet("xreal_tech_faq")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("xreal_tech_faq", "A1", &[]any{"Question", "Answer", "Tags"}))
	require.NoError(t, f.SetSheetRow("xreal_tech_faq", "A2", &[]any{"How do I pair?", "Hold the button.", "Setup"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestOpenReadsAllSheets(t *testing.T) {
	data := buildWorkbook(t)

	wb, err := NewOpener().Open(data)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	tag, ok := wb.Sheet("tag")
	require.True(t, ok)
	require.Equal(t, []string{"Name", "Description", "Active"}, tag.Rows[0])
	require.Equal(t, "Setup", tag.Rows[1][0])
	require.Equal(t, "1", tag.Rows[1][2])

	faqSheet, ok := wb.Sheet("xreal_tech_faq")
	require.True(t, ok)
	require.Equal(t, "How do I pair?", faqSheet.Rows[1][0])

	_, ok = wb.Sheet("missing")
	require.False(t, ok)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := NewOpener().Open([]byte("not a spreadsheet"))
	require.Error(t, err)
}
