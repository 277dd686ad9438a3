package ui

import (
	"strings"
	"testing"
)

func TestResultsTableRendersHeaderAndRows(t *testing.T) {
	tbl := NewResultsTable(FixedWidth(140), UnitLayout)
	tbl.AddRow("1", "BX1000", "M1", "ORD-1", "B0001", "P0001", "Line 1", "Warehouse", "2025-03-01 08:00")
	tbl.AddRow("2", "LOOSE1", "M2")

	out := tbl.Render()
	for _, want := range []string{"SERIAL", "PALLET", "BX1000", "P0001", "LOOSE1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
}

func TestResultsTableEmpty(t *testing.T) {
	if out := NewResultsTable(FixedWidth(80), BoxLayout).Render(); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}

func TestCalculateWidthsRespectsBounds(t *testing.T) {
	narrow := NewResultsTable(FixedWidth(20), PalletLayout).calculateWidths()
	if narrow[1] != 10 {
		t.Fatalf("expected min width 10 for serial column, got %d", narrow[1])
	}

	wide := NewResultsTable(FixedWidth(400), PalletLayout).calculateWidths()
	if wide[1] != 28 {
		t.Fatalf("expected max width 28 for serial column, got %d", wide[1])
	}
	if wide[0] != 4 {
		t.Fatalf("expected fixed width 4 for number column, got %d", wide[0])
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"BX1000", 10, "BX1000"},
		{"PALLET-000123456", 10, "PALLET-..."},
		{"ABCDEF", 3, "ABC"},
		{"ABC", 0, "ABC"},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPageSummary(t *testing.T) {
	if got := PageSummary(2, 5, 480); got != "page 2 of 5 · 480 units" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := PageSummary(1, 0, 0); got != "0 units" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := Count(1, "box", "boxes"); got != "1 box" {
		t.Fatalf("unexpected count %q", got)
	}
}
