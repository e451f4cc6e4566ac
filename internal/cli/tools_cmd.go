package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools this server exposes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Definitions are static; no client or credentials are needed to
			// enumerate them.
			registry := tools.New(nil, "", nil, log)
			for _, tool := range registry.Definitions() {
				fmt.Printf("%-24s %s\n", tool.Name, tool.Description)
			}
		},
	}
}
