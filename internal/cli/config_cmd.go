package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved Bitbucket configuration with the credential masked",
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

			redacted := cfg.Redacted()
			data, err := yaml.Marshal(map[string]any{
				"baseUrl":           redacted.BaseURL,
				"authScheme":        string(redacted.AuthScheme),
				"userIdentity":      redacted.UserIdentity,
				"apiCredential":     redacted.APICredential,
				"defaultDestBranch": redacted.DefaultDestBranch,
				"cloud":             redacted.IsCloud(),
			})
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(paths.Settings)
		},
	}
}
