package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/search"
	"github.com/packtrace/packtrace/internal/testutil"
)

func report(t *testing.T, req search.Request) *search.Report {
	t.Helper()
	h := testutil.NewTestHierarchy(t).WithYAML(testutil.Plant).Build()
	rep, err := search.New(h.Store, search.Options{}).Export(context.Background(), req)
	require.NoError(t, err)
	return rep
}

func open(t *testing.T, s *Sheet) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func value(t *testing.T, f *excelize.File, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheetName, axis)
	require.NoError(t, err)
	return v
}

func TestFromReportLayouts(t *testing.T) {
	tests := []struct {
		name    string
		groupBy model.GroupBy
		title   string
		headers []string
		rows    int
	}{
		{"ungrouped", model.GroupNone, TitleProducts,
			[]string{"Serial Number", "Type", "Order No", "Box Serial", "Pallet Serial", "Line", "Production Date"}, 7},
		{"by box", model.GroupBox, TitleBoxes,
			[]string{"Box Serial", "Pallet Serial", "Type", "Qty", "Line", "Last Update"}, 5},
		{"by pallet", model.GroupPallet, TitlePallets,
			[]string{"Pallet Serial", "Type", "Total Boxes", "Line", "Last Update"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FromReport(report(t, search.Request{GroupBy: tt.groupBy}))
			assert.Equal(t, tt.title, s.Title)
			assert.Len(t, s.Rows, tt.rows)

			f := open(t, s)
			rows, err := f.GetRows(sheetName)
			require.NoError(t, err)
			require.Len(t, rows, headerRow+tt.rows)
			assert.Equal(t, tt.title, rows[titleRow-1][0])
			assert.Equal(t, tt.headers, rows[headerRow-1])
		})
	}
}

func TestWorkbookFormatting(t *testing.T) {
	s := FromReport(report(t, search.Request{}))
	f := open(t, s)

	merged, err := f.GetMergeCells(sheetName)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "G1", merged[0].GetEndAxis())

	// Newest first: the loose unit leads.
	assert.Equal(t, "LOOSE1", value(t, f, "A4"))
	assert.Equal(t, model.None, value(t, f, "D4"))

	raw, err := f.GetCellValue(sheetName, "G4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	_, err = strconv.ParseFloat(raw, 64)
	assert.NoError(t, err, "production date is stored as a date serial, got %q", raw)

	for i, c := range unitColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w, err := f.GetColWidth(sheetName, col)
		require.NoError(t, err)
		assert.InDelta(t, c.Width, w, 0.01, "width of %s", c.Header)
	}

	headerStyle, err := f.GetCellStyle(sheetName, "A3")
	require.NoError(t, err)
	style, err := f.GetStyle(headerStyle)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

// Scenario D: a grouped export with no matches is a header-only sheet.
func TestEmptyGroupedExport(t *testing.T) {
	s := FromReport(report(t, search.Request{Type: "M9", GroupBy: model.GroupBox}))
	require.Empty(t, s.Rows)

	f := open(t, s)
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, headerRow)
	assert.Equal(t, "Box Serial", rows[headerRow-1][0])
}

func TestFilename(t *testing.T) {
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	s := &Sheet{Title: TitlePallets, Columns: palletColumns}
	assert.Equal(t, "pallet-group-report-2025-03-05.xlsx", s.Filename(day))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	s := FromReport(report(t, search.Request{GroupBy: model.GroupPallet}))
	require.NoError(t, s.WriteFile(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(sheetName, "A4")
	require.NoError(t, err)
	assert.Equal(t, "P0002", v)
}

func TestWriteRejectsEmptyColumns(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, (&Sheet{Title: "x"}).Write(&buf))
}
