package cli

import (
	"github.com/spf13/cobra"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/config"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	logFile  string

	// loaded at init time
	paths    config.Paths
	settings config.Settings
	log      *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bitbucket-mcp",
		Short: "Bitbucket MCP bridge",
		Long:  "bitbucket-mcp exposes Bitbucket Cloud and Server repository operations as MCP tools over stdio.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Settings = cfgFile
			}
			settings, err = config.LoadSettings(paths.Settings)
			if err != nil {
				return err
			}
			if logLevel != "" {
				settings.Logging.Level = logLevel
			}
			if logFile != "" {
				settings.Logging.File = logFile
			}
			log = logging.New(nil, settings.Logging.Level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ~/.bitbucket-mcp/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default ~/.bitbucket-mcp/logs/bitbucket-mcp.log)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newToolsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
