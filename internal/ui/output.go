package ui

import "fmt"

// Unicode symbols for status indicators
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
)

// Check returns a success message with checkmark symbol
func Check(msg string) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, msg)
}

// Checkf returns a formatted success message with checkmark symbol
func Checkf(format string, args ...any) string {
	return Check(fmt.Sprintf(format, args...))
}

// Error returns an error message with X symbol
func Error(msg string) string {
	return fmt.Sprintf("%s %s", SymbolError, msg)
}

// Warning returns a warning message with warning symbol
func Warning(msg string) string {
	return fmt.Sprintf("%s %s", SymbolWarning, msg)
}

// Header returns a styled section header
func Header(msg string) string {
	return Bold.Render(msg)
}

// Hint returns muted hint text
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Count returns a count with the noun pluralized, e.g. "3 units".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// PageSummary describes a page of a paginated listing, e.g.
// "page 2 of 5 · 480 units".
func PageSummary(page, totalPages, total int) string {
	if totalPages == 0 {
		return Count(total, "unit", "units")
	}
	return fmt.Sprintf("page %d of %d · %s", page, totalPages, Count(total, "unit", "units"))
}
