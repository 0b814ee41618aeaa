package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// ConfigPath names the config file. Empty means AUDIOCTL_CONFIG, then
	// the per-user default.
	ConfigPath string

	// CatalogPath, FixturePath and SessionDB override the config file.
	CatalogPath string
	FixturePath string
	SessionDB   string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the audioctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "audioctl",
		Short: "audioctl - vendor audio enhancement control",
		Long: `Learn, apply and read vendor-specific audio enhancement switches.

Vendor drivers keep their own enhancement toggles in the endpoint property
store. audioctl learns where a driver keeps a switch from two snapshots
taken around a manual toggle, records the rule in a catalog file, and
later writes and verifies that switch on demand.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default: $AUDIOCTL_CONFIG or the per-user config)")
	pf.StringVar(&opts.CatalogPath, "catalog", "", "catalog file (overrides config)")
	pf.StringVar(&opts.FixturePath, "registry-fixture", "", "simulate the machine from a YAML registry fixture")
	pf.StringVar(&opts.SessionDB, "session-db", "", "SQLite learning session log (overrides config)")

	cmd.AddCommand(NewLearnCommand(opts))
	cmd.AddCommand(NewLearnEffectCommand(opts))
	cmd.AddCommand(NewEnhancementsCommand(opts))
	cmd.AddCommand(NewEffectCommand(opts))
	cmd.AddCommand(NewSupportedCommand(opts))
	cmd.AddCommand(NewDiscoverCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
