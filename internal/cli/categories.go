package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/tui"
)

// NewCategoriesCommand creates the categories command group.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				cats, err := a.settings.ListCategories(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.Categories(cats))
				return nil
			})
		},
	})

	var kind string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category; its id is derived from the name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				c, err := a.settings.AddCategory(ctx, args[0], repository.Direction(kind))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added category %s (%s)\n", c.ID, c.Kind)
				return nil
			})
		},
	}
	add.Flags().StringVar(&kind, "kind", string(repository.DirectionExpense), "income or expense")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category no rule uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.settings.DeleteCategory(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}
