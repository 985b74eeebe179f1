package commands

import (
	"fmt"

	"github.com/aussiebroadwan/tabauth/pkg/cryptox"
	"github.com/spf13/cobra"
)

func newPasswordCommand() *cobra.Command {
	var length int

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a password containing every character class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cryptox.GeneratePassword(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	generate.Flags().IntVarP(&length, "length", "l", cryptox.DefaultGeneratedPasswordLength, "password length")

	cmd := &cobra.Command{
		Use:   "password",
		Args:  cobra.NoArgs,
		Short: "Password utilities",
	}
	cmd.AddCommand(generate)
	return cmd
}

func newSecretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Args:  cobra.NoArgs,
		Short: "Signing secret utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate a random AUTH_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cryptox.GenerateToken(cryptox.TokenSize512)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	})
	return cmd
}
