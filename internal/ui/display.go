package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

const (
	// fallbackWidth is used when stdout is not a terminal or cannot be sized.
	fallbackWidth = 120

	// leftMargin indents tables and rendered markdown.
	leftMargin = 2
	// columnGap separates adjacent table columns.
	columnGap = 2
)

// Terminal is the output surface listings are laid out for.
type Terminal struct {
	Width int
	TTY   bool
}

// Stdout sizes the terminal attached to stdout. Redirected output is laid
// out at the fallback width.
func Stdout() Terminal {
	fd := os.Stdout.Fd()
	t := Terminal{Width: fallbackWidth, TTY: term.IsTerminal(fd)}
	if t.TTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			t.Width = w
		}
	}
	return t
}

// FixedWidth returns a terminal of the given width.
func FixedWidth(width int) Terminal {
	return Terminal{Width: width, TTY: true}
}

// flexWidth returns the cells left for ratio-sized columns once the margin,
// the gaps between columns, and the fixed columns are taken out.
func (t Terminal) flexWidth(columns, fixed int) int {
	gaps := max(columns-1, 0) * columnGap
	return max(t.Width-leftMargin-gaps-fixed, 0)
}

// wrapWidth is the word-wrap width for markdown, falling back when unsized.
func (t Terminal) wrapWidth() int {
	if t.Width <= 0 {
		return fallbackWidth
	}
	return t.Width
}
