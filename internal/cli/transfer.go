package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the save slot as portable text",
		Long: `Encode the stored save as a single line of text that can be moved to another
machine and loaded with "academy import".

Examples:
  academy export > backup.txt
  academy export --out backup.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := OpenApp(opts.Config, io.Discard)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open game", err)
			}
			defer app.Close()

			data, ok := app.Engine.Export(cmd.Context())
			if !ok {
				return NewExitError(ExitFailure, fmt.Sprintf("no save in slot %q", app.Gateway.Key()))
			}
			if opts.Output != "" {
				if err := os.WriteFile(opts.Output, []byte(data+"\n"), 0o644); err != nil {
					return WrapExitError(ExitCommandError, "failed to write export", err)
				}
				return nil
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"slot": app.Gateway.Key(), "data": data})
			}
			fmt.Fprintln(cmd.OutOrStdout(), data)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "write to a file instead of stdout")

	return cmd
}

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	File string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import [DATA]",
		Short: "Replace the save slot with exported text",
		Long: `Validate exported text and store it in the save slot. Invalid data is rejected
and the existing save is left untouched. DATA may be given as an argument,
with --file, or on stdin.

Examples:
  academy import "$(cat backup.txt)"
  academy import --file backup.txt
  academy export --slot alice | academy import --slot bob`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImport(opts, args, cmd.InOrStdin())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read import data", err)
			}

			app, err := OpenApp(opts.Config, io.Discard)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open game", err)
			}
			defer app.Close()

			if !app.Gateway.ImportPortable(cmd.Context(), data) {
				return NewExitError(ExitFailure, "save data rejected; existing save unchanged")
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"slot": app.Gateway.Key(), "imported": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported into slot %q.\n", app.Gateway.Key())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read exported text from a file")

	return cmd
}

func readImport(opts *ImportOptions, args []string, stdin io.Reader) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	default:
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}
