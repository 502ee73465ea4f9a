package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tfask/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about the Terraform code. The index is built first if none exists.

Tools:
  ask       answer a question, with the chunks it is based on
  retrieve  return the chunks most relevant to a question

By default the server communicates over stdio using JSON-RPC. Use --port to
serve over HTTP instead, e.g. for the MCP Inspector.

Examples:
  # Stdio mode (default)
  tfask mcp serve

  # HTTP mode
  tfask mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "tfask": {
        "command": "/path/to/tfask",
        "args": ["mcp", "serve", "--source-dir", "/path/to/terraform"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

// newMCPServer is replaced in tests.
var newMCPServer = mcp.NewServer

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

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pipeline, closeFn, err := startPipeline(ctx, *settings, pipelineOptions{Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	defer closeFn()

	server, err := newMCPServer(&mcp.Ports{
		Pipeline: pipeline,
		Settings: settings,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
