package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run packtrace as an MCP server",
	Long: `Run packtrace as an MCP (Model Context Protocol) server.

This lets LLM agents search the hierarchy through a standardized protocol.
The server communicates over stdin/stdout using line-delimited JSON-RPC 2.0.
Logs go to stderr.

For use with an MCP client, add to its config:
  {
    "mcpServers": {
      "packtrace": {
        "command": "packtrace",
        "args": ["mcp", "--db", "/path/to/packtrace.db"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, engine, err := openEngine()
		if err != nil {
			// stdout belongs to the protocol, so errors go to cobra.
			return err
		}
		defer s.Close()

		// Don't output anything to stdout except MCP protocol
		srv := mcp.NewServer(engine, os.Stdin, os.Stdout, getLogger(), currentVersionInfo().Version)
		if err := srv.Run(cmd.Context()); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
