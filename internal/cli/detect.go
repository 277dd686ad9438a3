package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/ui"
)

var detectCmd = &cobra.Command{
	Use:   "detect <prefix>",
	Short: "Show which levels hold a serial prefix",
	Long: `Show which hierarchy levels hold a value starting with the prefix, in
priority order: serial, module_serial, box, pallet.

Examples:
  packtrace detect BX10
  packtrace detect P00 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) > 0 {
			prefix = strings.TrimSpace(args[0])
		}

		s, engine, err := openEngine()
		if err != nil {
			return fail(err)
		}
		defer s.Close()

		levels, err := engine.Detect(cmd.Context(), prefix)
		if err != nil {
			return fail(err)
		}
		if levels == nil {
			levels = []model.Level{}
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"types": levels}, &Meta{Count: len(levels)})
			return nil
		}

		if len(levels) == 0 {
			fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("No level holds a value starting with %q.", prefix)))
			return nil
		}
		names := make([]string, len(levels))
		for i, l := range levels {
			names[i] = string(l)
		}
		fmt.Fprintln(stdout, ui.Header(strings.Join(names, ", ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
