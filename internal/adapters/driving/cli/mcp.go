package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve retrieval to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Runs a Model Context Protocol server exposing the retrieve_chunks and
list_documents tools plus the docrag://documents resources.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants expect when they launch docrag themselves:

  {"mcpServers": {"docrag": {"command": "docrag", "args": ["mcp", "serve"]}}}

With --port it serves the streamable HTTP transport instead:

  docrag mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval:  retrievalService,
		Repository: repository,
		Logger:     appLogger,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
