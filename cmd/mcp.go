package cmd

import (
	"github.com/huangsam/roadsurvey/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the roadsurvey MCP server",
	Long: `Launch an MCP server over stdio so AI agents can estimate damage,
summarize estimates and survey folders through standard tools.

Survey headers are suppressed in this mode because stdout carries the protocol.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
