package commands

import (
	"fmt"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/pkg/cryptox"
	"github.com/spf13/cobra"
)

func newAccountsCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Args:    cobra.NoArgs,
		Aliases: []string{"account", "a"},
		Short:   "Manage accounts",
	}

	cmd.AddCommand(
		newAccountsCreateCommand(open),
		newAccountsSetStatusCommand(open),
	)

	return cmd
}

func newAccountsCreateCommand(open opener) *cobra.Command {
	var (
		password string
		name     string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an active account with the given role",
		Long: `Create an active account with the given role.

When --password is omitted a password is generated and printed once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			generated := password == ""
			if generated {
				p, err := cryptox.GeneratePassword(cryptox.DefaultGeneratedPasswordLength)
				if err != nil {
					return err
				}
				password = p
			}

			core, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			account, err := core.Auth.CreateAccount(cmd.Context(), args[0], password, name, domain.Role(role))
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %s account %s (%s)\n", account.Role, account.Email, account.ID)
			if generated {
				fmt.Fprintf(out, "password: %s\n", password)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (generated when empty)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&role, "role", "r", string(domain.RoleRegular), "role: regular, moderator or admin")
	return cmd
}

func newAccountsSetStatusCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <email> <active|inactive|suspended|deleted>",
		Short: "Change an account's status",
		Long: `Change an account's status.

Any status other than active also revokes every session the account holds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			account, err := core.Auth.SetAccountStatus(cmd.Context(), args[0], domain.Status(args[1]))
			if err != nil {
				return fmt.Errorf("set status: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", account.Email, account.Status)
			return nil
		},
	}
}
