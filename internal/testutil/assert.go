package testutil

import (
	"context"
	"testing"
)

// AssertUnitCount fails the test if the unit table does not hold n rows.
func (h *TestHierarchy) AssertUnitCount(n int) {
	h.t.Helper()
	st, err := h.Store.Stats(context.Background())
	if err != nil {
		h.t.Fatalf("stats: %v", err)
	}
	if st.Units != n {
		h.t.Errorf("expected %d units, got %d", n, st.Units)
	}
}

// AssertSearchCount runs a search through the CLI and verifies the total.
func (h *TestHierarchy) AssertSearchCount(expectedTotal int, args ...string) {
	h.t.Helper()
	result := h.RunCLI(append([]string{"search"}, args...)...)
	result.MustSucceed(h.t)

	if got := result.DataInt("total"); got != expectedTotal {
		h.t.Errorf("search %v: expected total %d, got %d\nRaw: %s", args, expectedTotal, got, result.RawJSON)
	}
}

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}

// AssertResultCount checks that a result list has the expected length.
func (r *CLIResult) AssertResultCount(t *testing.T, key string, expected int) {
	t.Helper()
	results := r.DataList(key)
	if len(results) != expected {
		t.Errorf("expected %d %s, got %d\nRaw: %s", expected, key, len(results), r.RawJSON)
	}
}

// DataInt extracts a number from the Data field.
func (r *CLIResult) DataInt(key string) int {
	if r.Data == nil {
		return 0
	}
	if n, ok := r.Data[key].(float64); ok {
		return int(n)
	}
	return 0
}
