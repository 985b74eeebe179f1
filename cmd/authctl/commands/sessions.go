package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aussiebroadwan/tabauth/internal/auth/service"
	"github.com/spf13/cobra"
)

func newSessionsCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Args:    cobra.NoArgs,
		Aliases: []string{"session", "s"},
		Short:   "Manage sessions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "revoke-all <email>",
			Short: "Sign an account out on every device",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				core, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer core.Close()

				n, err := core.Auth.RevokeAllSessions(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("revoke sessions: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %d sessions\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "sweep",
			Short: "Delete expired sessions once",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				core, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer core.Close()

				hk := service.NewHousekeepingService(
					core.Sessions,
					slog.New(slog.NewTextHandler(io.Discard, nil)),
					0,
					core.Metrics,
				)
				n, err := hk.RunOnce(cmd.Context())
				if err != nil {
					return fmt.Errorf("sweep sessions: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", n)
				return nil
			},
		},
	)

	return cmd
}
