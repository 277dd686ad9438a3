// Package cli implements the packtrace command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/config"
	"github.com/packtrace/packtrace/internal/logging"
	"github.com/packtrace/packtrace/internal/ui"
)

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "packtrace",
	Short: "packtrace - serial search over the unit, box, and pallet hierarchy",
	Long: `packtrace searches a packaging hierarchy where units are packed into boxes
and boxes are stacked on pallets.

A serial prefix is matched against unit serials, module serials, box serials,
and pallet serials. Results come back with their box, pallet, and shipment
relations resolved, page by page or as a spreadsheet export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		switch cmd.Name() {
		case "completion", "help", "version", "init":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		loaded, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if strings.TrimSpace(dbPath) != "" {
			loaded.Database = dbPath
		}
		cfg = loaded
		ui.ConfigureTheme(cfg.UI.Accent)

		logger, err = logging.New(cfg.Log, verbose)
		if err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("config", resolvedConfigPath),
			zap.String("database", cfg.Database))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the hierarchy database (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log at debug level")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// getLogger returns the process logger.
func getLogger() *zap.Logger {
	return logging.OrNop(logger)
}

// resolveConfigPath returns the config file the CLI reads: --config, then
// $PACKTRACE_CONFIG, then the default location.
func resolveConfigPath() string {
	if p := strings.TrimSpace(configPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(config.EnvConfig)); p != "" {
		return p
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	resolvedConfigPath = resolveConfigPath()
	if strings.TrimSpace(configPath) != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}
