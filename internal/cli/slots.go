package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/storage"
)

// NewSlotsCommand creates the slots command.
func NewSlotsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List save slots in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := OpenApp(rootOpts.Config, io.Discard)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open game", err)
			}
			defer app.Close()

			slots, err := app.Slots.List(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list slots", err)
			}
			if rootOpts.Format == "json" {
				if slots == nil {
					slots = []storage.SlotInfo{}
				}
				return writeJSON(cmd.OutOrStdout(), slots)
			}
			if len(slots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saves.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLOT\tSIZE\tUPDATED")
			for _, s := range slots {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Slot, humanize.Bytes(uint64(s.Size)), humanize.Time(s.UpdatedAt))
			}
			return w.Flush()
		},
	}
	return cmd
}
