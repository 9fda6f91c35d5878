package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/service"
	"github.com/jask/finvault/internal/tui"
)

// NewTxCommand creates the tx command group.
func NewTxCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "List and edit transactions",
	}
	cmd.AddCommand(newTxListCommand(rootOpts))
	cmd.AddCommand(newTxAddCommand(rootOpts))
	cmd.AddCommand(newTxCategorizeCommand(rootOpts))
	cmd.AddCommand(newTxDeleteCommand(rootOpts))
	return cmd
}

func newTxListCommand(rootOpts *RootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a month's transactions, newest first",
		Args:  cobra.NoArgs,
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
				views, err := a.ledger.ListMonth(ctx, sess, m)
				if err != nil {
					return err
				}
				names, err := a.categoryNames(ctx)
				if err != nil {
					return err
				}
				symbol := a.cfg.UI.CurrencySymbol
				out := cmd.OutOrStdout()
				fmt.Fprint(out, tui.Transactions(views, names, symbol))
				fmt.Fprint(out, tui.Totals(a.ledger.Totals(views), symbol))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default: current month)")
	return cmd
}

type txAddOptions struct {
	date        string
	amount      string
	description string
	category    string
	account     string
}

func newTxAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &txAddOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual transaction",
		Example: `  finvault tx add --date 2025-11-10 --amount=-35,90 --desc "Feira" --category mercado
  finvault tx add --date 2025-11-05 --amount 5000 --desc "Salário" --category salario`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney(opts.amount)
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				sess, err := login(ctx, cmd, rootOpts, a)
				if err != nil {
					return err
				}
				entry := service.ManualEntry{
					Date:        opts.date,
					Amount:      amount,
					Description: opts.description,
					Account:     repository.AccountKey(opts.account),
				}
				if opts.category != "" {
					entry.CategoryID = &opts.category
				}
				id, err := a.ledger.AddManual(ctx, sess, entry)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added transaction %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.amount, "amount", "", "signed amount, negative for expenses")
	cmd.Flags().StringVar(&opts.description, "desc", "", "description (stored encrypted)")
	cmd.Flags().StringVar(&opts.category, "category", "", "category id")
	cmd.Flags().StringVar(&opts.account, "account", string(repository.AccountInter), "account")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newTxCategorizeCommand(rootOpts *RootOptions) *cobra.Command {
	var clearCategory bool
	cmd := &cobra.Command{
		Use:   "categorize <id> [category]",
		Short: "Set or clear a transaction's category",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			var category *string
			switch {
			case clearCategory && len(args) == 2:
				return fmt.Errorf("give a category or --clear, not both")
			case !clearCategory && len(args) == 1:
				return fmt.Errorf("missing category (or pass --clear)")
			case len(args) == 2:
				category = &args[1]
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.ledger.SetCategory(ctx, id, category); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "transaction %d updated\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearCategory, "clear", false, "remove the category")
	return cmd
}

func newTxDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.ledger.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "transaction %d deleted\n", id)
				return nil
			})
		},
	}
}
