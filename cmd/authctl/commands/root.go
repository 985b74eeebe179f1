package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/tabauth/internal/auth/app"
	"github.com/aussiebroadwan/tabauth/pkg/slogx"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "authctl",
		Short:        "Operator tooling for the authentication service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	open := func(ctx context.Context) (*app.Core, error) {
		cfg, err := app.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		return app.NewCore(ctx, cfg, cliLogger(cfg))
	}

	rootCmd.AddCommand(
		newAccountsCommand(open),
		newSessionsCommand(open),
		newPasswordCommand(),
		newSecretCommand(),
	)

	return rootCmd
}

// opener loads the configuration and opens the stores it names.
type opener func(ctx context.Context) (*app.Core, error)

// cliLogger only reports warnings so command output stays readable.
func cliLogger(cfg app.Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "authctl",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   "warn",
		Format:  "text",
		Output:  os.Stderr,
	})
}
