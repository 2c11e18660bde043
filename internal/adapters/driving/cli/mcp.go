package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can chat with
your repositories through the start_session, send_message and end_session
tools.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead. With --metrics the HTTP server also
exposes Prometheus metrics at /metrics.

Examples:
  # Stdio mode (default)
  repochat mcp serve

  # HTTP mode with metrics
  repochat mcp serve --port 8080 --metrics`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("metrics", false, "serve Prometheus metrics at /metrics (HTTP mode only)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	withMetrics, err := cmd.Flags().GetBool("metrics")
	if err != nil {
		return fmt.Errorf("getting metrics flag: %w", err)
	}

	app, err := appLoader(cmd.Context(), ai.NeedEmbedding|ai.NeedLLM)
	if err != nil {
		return err
	}
	defer app.Close()

	ports := &mcp.Ports{Chat: app.ChatService(), Version: version}
	if withMetrics && app.Metrics != nil {
		ports.Metrics = app.Metrics.Handler()
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
