package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/bitbucket"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/config"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/gitremote"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/logging"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/mcp"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/tools"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			cfg, err := config.Load(cwd)
			if err != nil {
				return err
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			logPath := settings.Logging.File
			if logPath == "" {
				logPath = filepath.Join(paths.Logs, "bitbucket-mcp.log")
			}
			f, err := logging.OpenLogFile(logPath)
			if err != nil {
				return fmt.Errorf("could not open log file: %w", err)
			}
			defer f.Close()
			log = logging.NewWithFile(f, settings.Logging.Level)

			log.Info().
				Str("version", version.Version).
				Str("baseURL", cfg.BaseURL).
				Bool("cloud", cfg.IsCloud()).
				Msg("starting bitbucket-mcp")

			timeout := time.Duration(settings.HTTP.TimeoutSeconds) * time.Second
			client := bitbucket.New(cfg, timeout, log)

			// The source branch of pr_create defaults to whatever branch the
			// working directory has checked out, discovered on demand.
			activeBranch := func() (string, error) {
				local, err := gitremote.DiscoverLocal(cwd)
				if err != nil {
					return "", err
				}
				return local.Branch, nil
			}

			registry := tools.New(client, cfg.DefaultDestBranch, activeBranch, log)
			srv := mcp.NewServer(os.Stdin, os.Stdout, registry, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx)
		},
	}
}
