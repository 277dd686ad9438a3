package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Alignment represents column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// ColumnDef defines a column in a ResultsTable.
type ColumnDef struct {
	Name       string         // Header shown above the column
	WidthRatio float64        // Proportion of available width (0.0-1.0), 0 means fixed width
	MinWidth   int            // Minimum width in characters
	MaxWidth   int            // Maximum width (0 = no limit)
	Align      Alignment      // Text alignment
	Style      lipgloss.Style // Style to apply to cells in this column
}

// ResultsTable renders search results sized to the terminal.
type ResultsTable struct {
	term    Terminal
	columns []ColumnDef
	rows    [][]string
}

func serialCol(name string, ratio float64) ColumnDef {
	return ColumnDef{Name: name, WidthRatio: ratio, MinWidth: 10, MaxWidth: 28}
}

func fixedCol(name string, width int, align Alignment) ColumnDef {
	return ColumnDef{Name: name, MinWidth: width, Align: align}
}

var (
	// ColNum is the row number column (fixed width, right-aligned, muted).
	ColNum = ColumnDef{Name: "#", MinWidth: 4, MaxWidth: 6, Align: AlignRight, Style: Muted}

	colTime = ColumnDef{Name: "TIMESTAMP", MinWidth: 16, Style: Muted}
)

// Standard layouts for each listing.
var (
	// UnitLayout: [num, serial, type, order, box, pallet, line, status, timestamp]
	UnitLayout = []ColumnDef{
		ColNum, serialCol("SERIAL", 0.25), fixedCol("TYPE", 6, AlignLeft),
		serialCol("ORDER", 0.15), serialCol("BOX", 0.2), serialCol("PALLET", 0.2),
		fixedCol("LINE", 8, AlignLeft), fixedCol("STATUS", 9, AlignLeft), colTime,
	}

	// BoxLayout: [num, serial, pallet, type, qty, line, timestamp]
	BoxLayout = []ColumnDef{
		ColNum, serialCol("BOX", 0.5), serialCol("PALLET", 0.5), fixedCol("TYPE", 6, AlignLeft),
		fixedCol("QTY", 5, AlignRight), fixedCol("LINE", 8, AlignLeft), colTime,
	}

	// PalletLayout: [num, serial, type, boxes, line, timestamp]
	PalletLayout = []ColumnDef{
		ColNum, serialCol("PALLET", 1), fixedCol("TYPE", 6, AlignLeft),
		fixedCol("BOXES", 5, AlignRight), fixedCol("LINE", 8, AlignLeft), colTime,
	}

	// ChildUnitLayout: [num, serial, type, order, line, timestamp]
	ChildUnitLayout = []ColumnDef{
		ColNum, serialCol("SERIAL", 0.6), fixedCol("TYPE", 6, AlignLeft),
		serialCol("ORDER", 0.4), fixedCol("LINE", 8, AlignLeft), colTime,
	}

	// ChildBoxLayout: [num, serial, type, line, timestamp]
	ChildBoxLayout = []ColumnDef{
		ColNum, serialCol("BOX", 1), fixedCol("TYPE", 6, AlignLeft),
		fixedCol("LINE", 8, AlignLeft), colTime,
	}
)

// NewResultsTable creates a ResultsTable laid out for t.
func NewResultsTable(t Terminal, columns []ColumnDef) *ResultsTable {
	return &ResultsTable{
		term:    t,
		columns: columns,
		rows:    make([][]string, 0),
	}
}

// AddRow adds a row to the table. Missing trailing cells render empty.
func (t *ResultsTable) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added.
func (t *ResultsTable) Len() int { return len(t.rows) }

// calculateWidths computes column widths based on terminal size and column definitions.
func (t *ResultsTable) calculateWidths() []int {
	widths := make([]int, len(t.columns))

	// First pass: calculate fixed widths and total ratio
	var totalRatio float64
	var fixedWidth int

	for i, col := range t.columns {
		if col.WidthRatio == 0 {
			widths[i] = col.MinWidth
			if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
				widths[i] = col.MaxWidth
			}
			fixedWidth += widths[i]
		} else {
			totalRatio += col.WidthRatio
		}
	}

	available := t.term.flexWidth(len(t.columns), fixedWidth)

	// Second pass: distribute available space by ratio
	for i, col := range t.columns {
		if col.WidthRatio > 0 {
			width := int(float64(available) * col.WidthRatio / totalRatio)
			if width < col.MinWidth {
				width = col.MinWidth
			}
			if col.MaxWidth > 0 && width > col.MaxWidth {
				width = col.MaxWidth
			}
			widths[i] = width
		}
	}

	return widths
}

// Render generates the table output as a string.
func (t *ResultsTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	widths := t.calculateWidths()
	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Name
	}

	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = TruncateWithEllipsis(cell, widths[j])
		}
	}

	tbl := table.New().
		Border(lipgloss.Border{
			Top:    "─",
			Bottom: "─",
			Middle: "─",
		}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderRow(false).
		BorderColumn(false).
		BorderStyle(Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col >= len(t.columns) {
				return lipgloss.NewStyle()
			}

			colDef := t.columns[col]
			style := colDef.Style
			if row == table.HeaderRow {
				style = Bold
			} else if style.Value() == "" {
				style = lipgloss.NewStyle()
			}

			style = style.Width(widths[col])

			switch colDef.Align {
			case AlignRight:
				style = style.Align(lipgloss.Right)
			case AlignCenter:
				style = style.Align(lipgloss.Center)
			default:
				style = style.Align(lipgloss.Left)
			}

			if col < len(t.columns)-1 {
				style = style.PaddingRight(columnGap)
			}

			return style
		}).
		Rows(rows...)

	return tbl.Render()
}

// TruncateWithEllipsis truncates a string to maxLen runes, adding an
// ellipsis if needed.
func TruncateWithEllipsis(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return strings.TrimSpace(string(r[:maxLen-3])) + "..."
}

// FormatRowNum formats a row number with consistent width.
func FormatRowNum(num, maxNum int) string {
	width := len(fmt.Sprintf("%d", maxNum))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%*d", width, num)
}
