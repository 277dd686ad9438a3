package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/fixture"
	"github.com/packtrace/packtrace/internal/store"
	"github.com/packtrace/packtrace/internal/ui"
)

var (
	seedGenerate bool
	seedOptions  fixture.GenerateOptions
)

var seedCmd = &cobra.Command{
	Use:   "seed [fixture.yaml]",
	Short: "Load a hierarchy fixture into the database",
	Long: `Load pallets, boxes, units, and shipment documents into the database,
creating it if needed.

The hierarchy comes from a YAML fixture file, or with --generate from a
deterministic synthetic generator.

Examples:
  packtrace seed plant.yaml
  packtrace seed --generate --pallets 20 --boxes-per-pallet 8 --units-per-box 24
  packtrace --db /tmp/demo.db seed --generate`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			f      *fixture.Fixture
			source string
			err    error
		)
		switch {
		case seedGenerate:
			f = fixture.Generate(seedOptions)
			source = "generated"
		case len(args) == 1:
			f, err = fixture.ReadFile(args[0])
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			source = args[0]
		default:
			return handleErrorMsg(ErrMissingArgument, "a fixture file or --generate is required",
				"Usage: packtrace seed <fixture.yaml> or packtrace seed --generate")
		}

		dbFile := getConfig().Database
		lock, err := store.AcquireSeedLock(dbFile)
		if errors.Is(err, store.ErrSeedLocked) {
			return handleError(ErrDatabaseLocked, err, "Another seed is running against "+dbFile)
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer lock.Release()

		s, err := store.Open(dbFile)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		if err := fixture.Load(cmd.Context(), s, f); err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		stats, err := s.Stats(cmd.Context())
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		getLogger().Info("seeded",
			zap.String("database", dbFile),
			zap.String("source", source),
			zap.Int("units", stats.Units))

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"database": dbFile,
				"source":   source,
				"stats":    stats,
			}, nil)
			return nil
		}

		fmt.Fprintln(stdout, ui.Checkf("Seeded %s from %s", dbFile, source))
		fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("%s, %s, %s, %s",
			ui.Count(stats.Pallets, "pallet", "pallets"),
			ui.Count(stats.Boxes, "box", "boxes"),
			ui.Count(stats.Units, "unit", "units"),
			ui.Count(stats.Attachments+stats.Attachment2s, "document", "documents"))))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedGenerate, "generate", false, "Generate a synthetic hierarchy instead of reading a file")
	seedCmd.Flags().IntVar(&seedOptions.Pallets, "pallets", 4, "Generated pallets")
	seedCmd.Flags().IntVar(&seedOptions.BoxesPerPallet, "boxes-per-pallet", 4, "Generated boxes per pallet")
	seedCmd.Flags().IntVar(&seedOptions.UnitsPerBox, "units-per-box", 12, "Generated units per box")
	seedCmd.Flags().IntVar(&seedOptions.LooseUnits, "loose-units", 5, "Generated units outside any box")
	seedCmd.Flags().IntVar(&seedOptions.ShippedPallets, "shipped-pallets", 1, "Generated pallets linked to a shipment")
	seedCmd.Flags().IntVar(&seedOptions.PackingListEach, "packing-list-each", 10, "Attach a packing list to every Nth generated unit (0 disables)")
	rootCmd.AddCommand(seedCmd)
}
