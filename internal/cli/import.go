package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/tui"
)

type importOptions struct {
	account string
	preview bool
	limit   int
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <statement-file>",
		Short: "Import a bank or payment-processor statement",
		Long: `Import a statement export. The format is detected from its header line.
Rows already in the ledger are counted as duplicates and left alone, so
importing an overlapping statement is safe. A malformed amount or date aborts
the whole file before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.account, "account", "a", "", "account to file rows under (default: the format's account)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show parsed rows without importing")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "rows to show with --preview (0 for all)")

	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *importOptions, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read statement: %w", err)
	}
	return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
		account := repository.AccountKey(opts.account)
		symbol := a.cfg.UI.CurrencySymbol

		if opts.preview {
			p, err := a.importer.Preview(ctx, raw, account, opts.limit)
			if err != nil {
				return err
			}
			names, err := a.categoryNames(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.Preview(p, names, symbol))
			return nil
		}

		sess, err := login(ctx, cmd, rootOpts, a)
		if err != nil {
			return err
		}
		res, err := a.importer.Import(ctx, sess, raw, account)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.ImportResult(res))
		return nil
	})
}
