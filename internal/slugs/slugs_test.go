package slugs

import (
	"testing"
	"time"
)

func TestComponentSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PRODUCTS REPORT", "products-report"},
		{"Box Group Report", "box-group-report"},
		{"Special: Characters!", "special-characters"},
		{"  padded  ", "padded"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ComponentSlug(tt.in); got != tt.want {
				t.Fatalf("ComponentSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDatedFilename(t *testing.T) {
	day := time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"PALLET GROUP REPORT", ".xlsx", "pallet-group-report-2024-03-05.xlsx"},
		{"PRODUCTS REPORT", "xlsx", "products-report-2024-03-05.xlsx"},
		{"", ".xlsx", "report-2024-03-05.xlsx"},
		{"BOX GROUP REPORT", "", "box-group-report-2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DatedFilename(tt.title, day, tt.ext); got != tt.want {
				t.Fatalf("DatedFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
