package ui

import "testing"

func TestFlexWidth(t *testing.T) {
	tests := []struct {
		width, columns, fixed int
		want                  int
	}{
		{120, 1, 0, 118},
		{120, 6, 40, 120 - 2 - 10 - 40},
		{20, 6, 40, 0},
		{80, 0, 0, 78},
	}
	for _, tt := range tests {
		if got := FixedWidth(tt.width).flexWidth(tt.columns, tt.fixed); got != tt.want {
			t.Errorf("flexWidth(%d cols, %d fixed) at %d = %d, want %d", tt.columns, tt.fixed, tt.width, got, tt.want)
		}
	}
}

func TestWrapWidthFallback(t *testing.T) {
	if got := (Terminal{}).wrapWidth(); got != fallbackWidth {
		t.Fatalf("expected fallback %d, got %d", fallbackWidth, got)
	}
	if got := FixedWidth(64).wrapWidth(); got != 64 {
		t.Fatalf("expected 64, got %d", got)
	}
}
