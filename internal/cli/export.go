package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/export"
	"github.com/packtrace/packtrace/internal/ui"
)

var (
	exportFilters filterFlags
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export [start] [end]",
	Short: "Export search results to an xlsx spreadsheet",
	Long: `Export the units matching a search to an xlsx spreadsheet, optionally
grouped by box or pallet.

Without --output the file is written to the current directory, named after
the report title and today's date.

Examples:
  packtrace export BX10
  packtrace export --group-by pallet --from 2025-03-01 --to 2025-03-31
  packtrace export B0001 B0099 --scope box -o boxes.xlsx`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		req, err := exportFilters.params(args).Request()
		if err != nil {
			return fail(err)
		}

		s, engine, err := openEngine()
		if err != nil {
			return fail(err)
		}
		defer s.Close()

		spinner := newSpinner("Exporting")
		rep, err := engine.Export(cmd.Context(), req)
		spinner.Stop()
		if err != nil {
			return fail(err)
		}

		sheet := export.FromReport(rep)
		path := strings.TrimSpace(exportOutput)
		if path == "" {
			path = sheet.Filename(time.Now())
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}
		if err := sheet.WriteFile(path); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		getLogger().Info("export written",
			zap.String("path", path),
			zap.String("group_by", string(rep.GroupBy)),
			zap.Int("rows", rep.Len()))

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]any{
				"path":     path,
				"title":    sheet.Title,
				"group_by": rep.GroupBy,
				"rows":     rep.Len(),
			}, toWarnings(rep.Warnings), &Meta{Count: rep.Len(), QueryTimeMs: elapsedMs(start)})
			return nil
		}

		printWarnings(rep.Warnings)
		fmt.Fprintln(stdout, ui.Checkf("Wrote %s (%s)", path, ui.Count(rep.Len(), "row", "rows")))
		return nil
	},
}

func init() {
	exportFilters.register(exportCmd, true)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: <title>-<date>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
