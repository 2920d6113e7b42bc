package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the save slot and start over",
		Long: `Delete the stored save. This cannot be undone; export first to keep a copy.

Examples:
  academy reset --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitFailure, "refusing to reset without --yes")
			}
			app, err := OpenApp(rootOpts.Config, io.Discard)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open game", err)
			}
			defer app.Close()

			app.Engine.Reset(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Slot %q reset.\n", app.Gateway.Key())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting the save")

	return cmd
}
