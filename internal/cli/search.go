package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/search"
	"github.com/packtrace/packtrace/internal/ui"
)

var (
	searchFilters filterFlags
	searchPage    int
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search [start] [end]",
	Short: "Search units by serial prefix or range",
	Long: `Search units by serial prefix or inclusive serial range.

The level a serial belongs to is detected from the data unless --scope is
given. A prefix that matches several levels searches all of them.

Examples:
  packtrace search BX10
  packtrace search B0001 B0099 --scope box
  packtrace search --type M1 --from 2025-03-01 --to 2025-03-31
  packtrace search BX --page 2 --limit 50 --json`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		req, err := searchFilters.params(args).Request()
		if err != nil {
			return fail(err)
		}
		if searchPage < 0 || searchLimit < 0 {
			return handleErrorMsg(ErrInvalidPage, "--page and --limit must be positive", "")
		}

		s, engine, err := openEngine()
		if err != nil {
			return fail(err)
		}
		defer s.Close()

		spinner := newSpinner("Searching")
		res, err := engine.List(cmd.Context(), req, searchPage, searchLimit)
		spinner.Stop()
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(res, toWarnings(res.Warnings), &Meta{
				Count:       len(res.Rows),
				Total:       res.Total,
				QueryTimeMs: elapsedMs(start),
			})
			return nil
		}

		printWarnings(res.Warnings)
		if len(res.Rows) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No units found."))
			return nil
		}
		fmt.Fprintln(stdout, renderUnits(ui.Stdout(), res))
		fmt.Fprintln(stdout, ui.Hint(ui.PageSummary(res.Page, res.TotalPages, res.Total)))
		return nil
	},
}

// renderUnits renders a page of units, numbering rows across pages.
func renderUnits(term ui.Terminal, res *search.ListResult) string {
	table := ui.NewResultsTable(term, ui.UnitLayout)
	offset := (res.Page - 1) * res.Limit
	last := offset + len(res.Rows)
	for i, r := range res.Rows {
		table.AddRow(
			ui.FormatRowNum(offset+i+1, last),
			r.Serial, r.Type, r.OrderNo, r.BoxSerial, r.PalletSerial,
			r.Line, string(r.Status), formatTime(r.Timestamp),
		)
	}
	return table.Render()
}

func printWarnings(ws []search.Warning) {
	for _, w := range ws {
		fmt.Fprintln(os.Stderr, ui.Warning(w.Message))
	}
}

// newSpinner starts a spinner unless the output is machine-readable.
func newSpinner(message string) *ui.Spinner {
	if isJSONOutput() {
		return nil
	}
	s := ui.NewSpinner(message)
	s.Start()
	return s
}

func init() {
	searchFilters.register(searchCmd, false)
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Page number (1-based)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Rows per page (default from config)")
	rootCmd.AddCommand(searchCmd)
}
