package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/service"
	"github.com/jask/finvault/internal/tui"
)

// NewRulesCommand creates the rules command group.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
		Long: `Rules assign a category when the transaction description contains the
pattern, ignoring case. The highest priority match wins; equal priorities
resolve to the rule added first.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				list, err := a.settings.ListRules(ctx)
				if err != nil {
					return err
				}
				names, err := a.categoryNames(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.Rules(list, names))
				return nil
			})
		},
	})

	cmd.AddCommand(newRulesAddCommand(rootOpts))
	cmd.AddCommand(newRuleToggleCommand(rootOpts, "enable", "Enable a rule", true))
	cmd.AddCommand(newRuleToggleCommand(rootOpts, "disable", "Disable a rule", false))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.settings.DeleteRule(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted rule %s\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export [file]",
		Short: "Write rules as YAML to file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				var w io.Writer = cmd.OutOrStdout()
				if len(args) == 1 {
					f, err := os.Create(args[0])
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return a.settings.ExportRules(ctx, w)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Add rules from a YAML export; existing ids are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				res, err := a.settings.ImportRules(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rules added, %d skipped\n", res.Added, res.Skipped)
				return nil
			})
		},
	})

	return cmd
}

func newRulesAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		priority int
		disabled bool
	)
	cmd := &cobra.Command{
		Use:     "add <pattern> <category>",
		Short:   "Add a rule",
		Example: `  finvault rules add "uber eats" alimentacao --priority 20`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				r, err := a.settings.AddRule(ctx, args[0], args[1], priority, !disabled)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added rule %s\n", r.ID)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&priority, "priority", "p", service.DefaultRulePriority, "higher wins")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the rule disabled")
	return cmd
}

func newRuleToggleCommand(rootOpts *RootOptions, use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.settings.SetRuleEnabled(ctx, args[0], enabled); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rule %s %sd\n", args[0], use)
				return nil
			})
		},
	}
}
