package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewReclassifyCommand creates the reclassify command.
func NewReclassifyCommand(rootOpts *RootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "reclassify",
		Short: "Apply the current rules to a month's uncategorized transactions",
		Long: `Apply the current rules to uncategorized transactions of one month.
Transactions that already have a category are never changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				m, err := a.month(month)
				if err != nil {
					return err
				}
				sess, err := login(ctx, cmd, rootOpts, a)
				if err != nil {
					return err
				}
				res, err := a.reclassify.ReclassifyMonth(ctx, sess, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d scanned, %d updated", m, res.Scanned, res.Updated)
				if res.Undecryptable > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), ", %d could not be decrypted (wrong password?)", res.Undecryptable)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default: current month)")
	return cmd
}
