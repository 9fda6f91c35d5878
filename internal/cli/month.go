package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/tui"
)

// NewMonthCommand creates the month command group.
func NewMonthCommand(rootOpts *RootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Monthly summary, saving goal and budgets",
	}
	cmd.PersistentFlags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default: current month)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show totals, goal and per-category spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				m, err := a.month(month)
				if err != nil {
					return err
				}
				sum, err := a.months.Summary(ctx, m)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.Summary(sum, a.cfg.UI.CurrencySymbol))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "goal <amount>",
		Short: "Set the month's saving goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				m, err := a.month(month)
				if err != nil {
					return err
				}
				if err := a.months.SetSavingGoal(ctx, m, goal); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saving goal for %s set to %s\n", m, tui.FormatMoney(goal, a.cfg.UI.CurrencySymbol))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "budget <category> <amount>",
		Short: "Set a category limit for the month; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseMoney(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				m, err := a.month(month)
				if err != nil {
					return err
				}
				if err := a.months.SetBudget(ctx, m, args[0], limit); err != nil {
					return err
				}
				if !limit.IsPositive() {
					fmt.Fprintf(cmd.OutOrStdout(), "budget for %s removed from %s\n", args[0], m)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "budget for %s in %s set to %s\n", args[0], m, tui.FormatMoney(limit, a.cfg.UI.CurrencySymbol))
				return nil
			})
		},
	})

	return cmd
}
