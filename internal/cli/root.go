// Package cli implements the academy command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	DBPath      string
	Slot        string
	CatalogPath string

	// Config is loaded from the environment before any command runs,
	// then overridden by the flags above.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the academy CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "academy",
		Short: "DevLearn Academy - an idle game about learning to code",
		Long: `DevLearn Academy is an idle/incremental game about becoming a developer.
Write code, study lessons, hire a team and ship projects while the simulation
keeps running. Progress is saved to a local SQLite database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			if opts.DBPath != "" {
				cfg.DBPath = opts.DBPath
			}
			if opts.Slot != "" {
				cfg.SaveSlot = opts.Slot
			}
			if opts.CatalogPath != "" {
				cfg.CatalogPath = opts.CatalogPath
			}
			if opts.Verbose {
				cfg.LogLevel = "debug"
			}
			opts.Config = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite save database (default $DEVLEARN_DB_PATH or academy.db)")
	cmd.PersistentFlags().StringVar(&opts.Slot, "slot", "", "save slot name (default $DEVLEARN_SAVE_SLOT or main)")
	cmd.PersistentFlags().StringVar(&opts.CatalogPath, "catalog", "", "YAML catalog overriding the built-in content")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewSlotsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
