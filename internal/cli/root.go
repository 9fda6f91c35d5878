package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath    string
	DBPath        string
	LogLevel      string
	PasswordStdin bool
}

// NewRootCommand creates the root command for the finvault CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "finvault",
		Short: "finvault - encrypted personal ledger",
		Long: `An offline personal-finance ledger. Bank and payment-processor statements
are imported into a local SQLite database with descriptions encrypted under a
key derived from your password. Amounts, dates and categories stay queryable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/finvault/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "ledger database path (overrides database.path)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (overrides log.level)")
	cmd.PersistentFlags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "read the password from the first line of stdin")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewReclassifyCommand(opts))
	cmd.AddCommand(NewTxCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewMonthCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))

	return cmd
}
