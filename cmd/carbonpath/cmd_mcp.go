package main

import (
	"context"
	"fmt"

	"github.com/allcarbonfree/carbonpath/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Serve carbonpath tools to an MCP client over stdin/stdout.

Tools: carbonpath_simulate, carbonpath_technologies, carbonpath_countries,
carbonpath_paths, carbonpath_validate.

Tool calls are recorded without free text in <dir>/audit.jsonl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir, err := dataDir(cmd, cfg)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "carbonpath",
				Version:  version,
				Dir:      dir,
				LogLevel: cfg.Logging.Level,
				Defaults: cfg.Simulation,
			})
			if err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}
			return server.Run(context.Background())
		},
	}
}
