// Package export renders search reports as styled xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/packtrace/packtrace/internal/atomicfile"
	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/search"
	"github.com/packtrace/packtrace/internal/slugs"
)

// Report titles, one per grouping.
const (
	TitleProducts = "PRODUCTS REPORT"
	TitleBoxes    = "BOX GROUP REPORT"
	TitlePallets  = "PALLET GROUP REPORT"
)

// ContentType is the MIME type of a written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetName  = "Report"
	titleRow   = 1
	headerRow  = 3
	dateFormat = "dd/mm/yyyy hh:mm"
)

// Column is one worksheet column.
type Column struct {
	Header string
	Width  float64
	Date   bool
}

// Sheet is a titled table ready to be written as a workbook.
type Sheet struct {
	Title   string
	Columns []Column
	Rows    [][]any
}

var (
	unitColumns = []Column{
		{Header: "Serial Number", Width: 25},
		{Header: "Type", Width: 15},
		{Header: "Order No", Width: 20},
		{Header: "Box Serial", Width: 25},
		{Header: "Pallet Serial", Width: 25},
		{Header: "Line", Width: 10},
		{Header: "Production Date", Width: 20, Date: true},
	}
	boxColumns = []Column{
		{Header: "Box Serial", Width: 25},
		{Header: "Pallet Serial", Width: 25},
		{Header: "Type", Width: 15},
		{Header: "Qty", Width: 10},
		{Header: "Line", Width: 10},
		{Header: "Last Update", Width: 20, Date: true},
	}
	palletColumns = []Column{
		{Header: "Pallet Serial", Width: 25},
		{Header: "Type", Width: 15},
		{Header: "Total Boxes", Width: 15},
		{Header: "Line", Width: 10},
		{Header: "Last Update", Width: 20, Date: true},
	}
)

// FromReport lays out a report according to its grouping.
func FromReport(rep *search.Report) *Sheet {
	switch rep.GroupBy {
	case model.GroupBox:
		s := &Sheet{Title: TitleBoxes, Columns: boxColumns, Rows: make([][]any, 0, len(rep.Boxes))}
		for _, b := range rep.Boxes {
			s.Rows = append(s.Rows, []any{b.Serial, b.PalletSerial, b.Type, b.Count, b.Line, b.Timestamp})
		}
		return s
	case model.GroupPallet:
		s := &Sheet{Title: TitlePallets, Columns: palletColumns, Rows: make([][]any, 0, len(rep.Pallets))}
		for _, p := range rep.Pallets {
			s.Rows = append(s.Rows, []any{p.Serial, p.Type, p.Count, p.Line, p.Timestamp})
		}
		return s
	}
	s := &Sheet{Title: TitleProducts, Columns: unitColumns, Rows: make([][]any, 0, len(rep.Units))}
	for _, u := range rep.Units {
		s.Rows = append(s.Rows, []any{u.Serial, u.Type, u.OrderNo, u.BoxSerial, u.PalletSerial, u.Line, u.Timestamp})
	}
	return s
}

// Filename returns the download name of the sheet for the given day.
func (s *Sheet) Filename(day time.Time) string {
	return slugs.DatedFilename(s.Title, day, ".xlsx")
}

// Write renders the sheet as an xlsx workbook to w.
func (s *Sheet) Write(w io.Writer) error {
	f, err := s.workbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile writes the workbook to path atomically.
func (s *Sheet) WriteFile(path string) error {
	return atomicfile.WriteFunc(path, 0o644, s.Write)
}

type styles struct {
	title, header, cell, date int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	dateFmt := dateFormat

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{
			Font:      &excelize.Font{Family: "Arial", Size: 16, Bold: true, Underline: "single"},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F75B5"}},
			Border:    thin,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&st.cell, &excelize.Style{
			Border:    thin,
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		}},
		{&st.date, &excelize.Style{
			Border:       thin,
			Alignment:    &excelize.Alignment{Horizontal: "left", Vertical: "center"},
			CustomNumFmt: &dateFmt,
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}

func (s *Sheet) workbook() (*excelize.File, error) {
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("sheet %q has no columns", s.Title)
	}

	f := excelize.NewFile()
	fail := func(err error) (*excelize.File, error) {
		_ = f.Close()
		return nil, err
	}

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fail(fmt.Errorf("rename sheet: %w", err))
	}
	st, err := newStyles(f)
	if err != nil {
		return fail(err)
	}

	// Title
	first := cell(1, titleRow)
	if err := f.MergeCell(sheetName, first, cell(len(s.Columns), titleRow)); err != nil {
		return fail(fmt.Errorf("merge title: %w", err))
	}
	if err := f.SetCellValue(sheetName, first, s.Title); err != nil {
		return fail(err)
	}
	if err := f.SetCellStyle(sheetName, first, first, st.title); err != nil {
		return fail(err)
	}
	if err := f.SetRowHeight(sheetName, titleRow, 24); err != nil {
		return fail(err)
	}

	// Header
	headers := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	if err := f.SetSheetRow(sheetName, cell(1, headerRow), &headers); err != nil {
		return fail(fmt.Errorf("write header: %w", err))
	}
	if err := f.SetCellStyle(sheetName, cell(1, headerRow), cell(len(s.Columns), headerRow), st.header); err != nil {
		return fail(err)
	}

	// Data
	for i, row := range s.Rows {
		r := headerRow + 1 + i
		if err := f.SetSheetRow(sheetName, cell(1, r), &row); err != nil {
			return fail(fmt.Errorf("write row %d: %w", i+1, err))
		}
		for j, c := range s.Columns {
			style := st.cell
			if c.Date {
				style = st.date
			}
			if err := f.SetCellStyle(sheetName, cell(j+1, r), cell(j+1, r), style); err != nil {
				return fail(err)
			}
		}
	}

	for i, c := range s.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, c.Width); err != nil {
			return fail(fmt.Errorf("set width of column %s: %w", col, err))
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cell(1, headerRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fail(err)
	}
	return f, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
