package ui

import (
	"strings"
	"testing"
)

func TestRenderMarkdownNormalizesTrailingNewline(t *testing.T) {
	t.Parallel()

	out, err := RenderMarkdown("# Heading", FixedWidth(80))
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected rendered markdown to end with newline, got %q", out)
	}
	if strings.HasSuffix(out, "\n\n") {
		t.Fatalf("expected single trailing newline, got %q", out)
	}
}

func TestRenderMarkdownDefaultsWidthWhenNonPositive(t *testing.T) {
	t.Parallel()

	out, err := RenderMarkdown("hello", Terminal{})
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("expected non-empty rendered output")
	}
}

func TestRenderMarkdownKeepsTableCells(t *testing.T) {
	t.Parallel()

	out, err := RenderMarkdown("| join | on |\n|---|---|\n| box | unit.box_id |\n", FixedWidth(80))
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.Contains(out, "unit.box_id") {
		t.Fatalf("expected table cell in output, got %q", out)
	}
}

func TestMarkdownStyleHeadingsAreBold(t *testing.T) {
	style := markdownStyle()
	if style.Heading.Bold == nil || !*style.Heading.Bold {
		t.Fatalf("expected headings to be bold")
	}
	if style.H2.Prefix != "## " {
		t.Fatalf("expected H2 prefix, got %q", style.H2.Prefix)
	}
}
