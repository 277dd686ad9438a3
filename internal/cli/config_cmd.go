package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/config"
	"github.com/packtrace/packtrace/internal/ui"
)

func configData(path string, c *config.Config) map[string]any {
	_, statErr := os.Stat(path)
	return map[string]any{
		"config_path": path,
		"exists":      statErr == nil,
		"database":    c.Database,
		"server": map[string]any{
			"listen":     c.Server.Listen,
			"rate_limit": c.Server.RateLimit,
			"rate_burst": c.Server.RateBurst,
		},
		"search": map[string]any{
			"default_limit":       c.Search.DefaultLimit,
			"max_limit":           c.Search.MaxLimit,
			"export_limit":        c.Search.ExportLimit,
			"store_timeout":       c.Search.StoreTimeout.String(),
			"prefix_mismatch_len": c.Search.PrefixMismatchLen,
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"ui": map[string]any{
			"accent": strings.TrimSpace(c.UI.Accent),
		},
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage packtrace configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented default config file",
	Long: `Create a commented default config file at --config, $PACKTRACE_CONFIG,
or the default location. An existing file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := resolveConfigPath()
		_, statErr := os.Stat(target)
		existed := statErr == nil

		path, err := config.CreateDefault(target)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"config_path": path,
				"created":     !existed,
			}, nil)
			return nil
		}
		if existed {
			fmt.Fprintln(stdout, ui.Hint("Config already exists: "+path))
			return nil
		}
		fmt.Fprintln(stdout, ui.Checkf("Created %s", path))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after defaults, environment overrides, and the
--db flag have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getConfig()
		if isJSONOutput() {
			outputSuccess(configData(resolvedConfigPath, c), nil)
			return nil
		}

		data, err := config.Encode(c)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		fmt.Fprintln(stdout, ui.Hint("# "+resolvedConfigPath))
		fmt.Fprint(stdout, string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
