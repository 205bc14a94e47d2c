package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/relgraph/internal/explicit"
	relmcp "github.com/ajitpratap0/relgraph/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  discover_relationships — run all discovery strategies over an entity snapshot
  mine_text              — mine relationships from unstructured text
  recognize_patterns     — detect hubs, triangles, and communities
  list_rules             — show the explicit relationship rules`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			srv := relmcp.NewServer(
				newEngine(logger),
				newRecognizer(logger),
				newMiner(logger),
				explicit.DefaultRules(),
				logger,
			)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: relgraph MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
