package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/search"
	"github.com/packtrace/packtrace/internal/ui"
)

var childrenCmd = &cobra.Command{
	Use:   "children <box|pallet> <id>",
	Short: "List the contents of a box or pallet",
	Long: `List the units packed in a box, or the boxes stacked on a pallet.

An empty or unknown container lists nothing.

Examples:
  packtrace children box 12
  packtrace children pallet 3 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := strings.ToLower(strings.TrimSpace(args[0]))
		if kind != "box" && kind != "pallet" {
			return handleErrorMsg(ErrInvalidInput,
				fmt.Sprintf("unknown container kind %q", args[0]),
				"Use 'box' or 'pallet'")
		}
		id, err := search.ParseID(args[1])
		if err != nil {
			return fail(err)
		}

		s, engine, err := openEngine()
		if err != nil {
			return fail(err)
		}
		defer s.Close()

		term := ui.Stdout()
		var (
			items any
			count int
			table *ui.ResultsTable
		)
		switch kind {
		case "box":
			units, err := engine.BoxUnits(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			items, count = units, len(units)
			table = ui.NewResultsTable(term, ui.ChildUnitLayout)
			for i, u := range units {
				table.AddRow(ui.FormatRowNum(i+1, len(units)), u.Serial, u.Type, u.OrderNo, u.Line, formatTime(u.Timestamp))
			}
		case "pallet":
			boxes, err := engine.PalletBoxes(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			items, count = boxes, len(boxes)
			table = ui.NewResultsTable(term, ui.ChildBoxLayout)
			for i, b := range boxes {
				table.AddRow(ui.FormatRowNum(i+1, len(boxes)), b.Serial, b.Type, b.Line, formatTime(b.Timestamp))
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"kind":  kind,
				"id":    id,
				"items": items,
			}, &Meta{Count: count})
			return nil
		}

		if count == 0 {
			fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("%s %d is empty.", kind, id)))
			return nil
		}
		fmt.Fprintln(stdout, table.Render())
		if kind == "box" {
			fmt.Fprintln(stdout, ui.Hint(ui.Count(count, "unit", "units")))
		} else {
			fmt.Fprintln(stdout, ui.Hint(ui.Count(count, "box", "boxes")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(childrenCmd)
}
