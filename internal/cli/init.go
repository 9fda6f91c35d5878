package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/session"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the ledger account",
		Long: `Create the local account: a random salt is stored and your password is
stretched into the encryption key. The password itself is never stored and
cannot be recovered; a wrong password later simply fails to decrypt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				has, err := a.sessions.HasAccount(ctx)
				if err != nil {
					return err
				}
				if has {
					return session.ErrAccountExists
				}
				pw, err := readPassword(cmd, rootOpts, a, true)
				if err != nil {
					return err
				}
				if _, err := a.sessions.Setup(ctx, pw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "account created in %s\n", a.cfg.Database.Path)
				return nil
			})
		},
	}
}
