package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/save"
)

// StatusResult is the JSON form of the status command.
type StatusResult struct {
	Slot    string        `json:"slot"`
	Found   bool          `json:"found"`
	SavedAt string        `json:"saved_at,omitempty"`
	Version string        `json:"version,omitempty"`
	State   *player.State `json:"state,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved game",
		Long: `Print the player state stored in the save slot without running the simulation.

Examples:
  academy status
  academy status --slot alice --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), rootOpts, cmd.OutOrStdout())
		},
	}
	return cmd
}

func runStatus(ctx context.Context, opts *RootOptions, out io.Writer) error {
	app, err := OpenApp(opts.Config, io.Discard)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open game", err)
	}
	defer app.Close()

	rec, found := app.Gateway.LoadRecord(ctx)
	result := StatusResult{Slot: app.Gateway.Key(), Found: found}
	if found {
		result.SavedAt = time.UnixMilli(rec.Timestamp).UTC().Format(time.RFC3339)
		result.Version = rec.Version
		result.State = &rec.State
	}

	if opts.Format == "json" {
		return writeJSON(out, result)
	}
	if !found {
		fmt.Fprintf(out, "No save found in slot %q.\n", result.Slot)
		return nil
	}
	printStatus(out, rec, len(app.Engine.Catalog().Achievements))
	return nil
}

func printStatus(out io.Writer, rec save.Record, achievementCount int) {
	p := message.NewPrinter(language.English)
	s := rec.State

	p.Fprintf(out, "Saved %s\n", humanize.Time(time.UnixMilli(rec.Timestamp)))
	p.Fprintf(out, "Level %d (%d XP)\n", s.Level, s.XP)
	p.Fprintf(out, "Money: $%.2f (lifetime $%.2f)\n", s.Money, s.TotalEarned)
	p.Fprintf(out, "Energy: %.1f  Stress: %.1f\n", s.Energy, s.Stress)
	p.Fprintf(out, "Lines of code: %d\n", s.Clicks)
	p.Fprintf(out, "Lessons: %d  Challenges: %d  Projects: %d\n",
		s.LessonsCompleted, s.ChallengesCompleted, s.ProjectsCompleted)
	p.Fprintf(out, "Team: %d developer(s)\n", len(s.Developers))
	if s.ActiveProject != nil {
		p.Fprintf(out, "Working on %s: %.0f%%\n", s.ActiveProject.ID, s.ActiveProject.Fraction()*100)
	}
	p.Fprintf(out, "Achievements: %d/%d\n", len(s.Achievements), achievementCount)
}
