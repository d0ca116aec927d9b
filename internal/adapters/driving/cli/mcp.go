package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medreport/internal/adapters/driving/mcp"
	"github.com/custodia-labs/medreport/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can analyse
reports, simplify analyses and search the reference library.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, for example to test with MCP Inspector.

Prompt files are watched while the server runs; edits apply to the next
request.

Examples:
  # Stdio mode (default, for desktop assistants)
  medreport mcp serve

  # HTTP mode
  medreport mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "medreport": {
        "command": "/path/to/medreport",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if analysisService == nil {
		return unavailable("analysis service")
	}

	ports := &mcp.Ports{
		Analysis:   analysisService,
		Upload:     uploadService,
		Simplify:   simplifyService,
		References: referenceService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	watchPrompts(ctx)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// watchPrompts logs prompt reloads until ctx is done.
// Stdout belongs to the MCP transport, so everything goes through the logger.
func watchPrompts(ctx context.Context) {
	if promptWatcher == nil {
		return
	}
	reloaded, err := promptWatcher.Watch(ctx)
	if err != nil {
		logger.Warn("prompt files will not be reloaded: %v", err)
		return
	}
	go func() {
		for name := range reloaded {
			logger.Info("reloaded prompt %s", name)
		}
	}()
}
