package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	Long: `Run the HTTP search API until interrupted.

Routes:
  GET /api/products                 paginated unit search
  GET /api/detect-type?serial=      levels holding a prefix
  GET /api/export                   xlsx export
  GET /api/boxes/{id}/products      units in a box
  GET /api/pallets/{id}/boxes       boxes on a pallet
  GET /healthz                      store health

Examples:
  packtrace serve
  packtrace serve --listen 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getConfig()
		listen := strings.TrimSpace(serveListen)
		if listen == "" {
			listen = c.Server.Listen
		}

		s, engine, err := openEngine()
		if err != nil {
			return fail(err)
		}
		defer s.Close()

		srv := server.New(engine, server.Config{
			Listen:    listen,
			RateLimit: c.Server.RateLimit,
			RateBurst: c.Server.RateBurst,
			Ping:      s.Ping,
		}, getLogger())
		if err := srv.Run(cmd.Context()); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
