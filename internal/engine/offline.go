package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Impact classifies a recap line.
type Impact string

const (
	ImpactPositive Impact = "POSITIVE"
	ImpactNegative Impact = "NEGATIVE"
	ImpactNeutral  Impact = "NEUTRAL"
)

// RecapLine is one human-readable row of the "while you were away" summary.
type RecapLine struct {
	Summary string `json:"summary"`
	Impact  Impact `json:"impact"`
}

// Recap summarises what happened during offline catch-up.
type Recap struct {
	Elapsed           time.Duration `json:"elapsed"`
	Simulated         time.Duration `json:"simulated"`
	MoneyEarned       float64       `json:"money_earned"`
	XPGained          int64         `json:"xp_gained"`
	ProjectsCompleted int64         `json:"projects_completed"`
	EnergyChange      float64       `json:"energy_change"`
	StressChange      float64       `json:"stress_change"`
	Lines             []RecapLine   `json:"lines"`
}

// CatchUp simulates elapsed offline time as a single step, capped at the configured maximum.
func (e *Engine) CatchUp(elapsed time.Duration) Recap {
	recap := Recap{Elapsed: elapsed}
	if elapsed <= 0 {
		return recap
	}
	simulated := elapsed
	if e.maxCatchUp > 0 && simulated > e.maxCatchUp {
		simulated = e.maxCatchUp
	}
	recap.Simulated = simulated

	before := e.store.Snapshot()
	e.Update(simulated)
	after := e.store.Snapshot()

	recap.MoneyEarned = after.TotalEarned - before.TotalEarned
	recap.XPGained = after.XP - before.XP
	recap.ProjectsCompleted = after.ProjectsCompleted - before.ProjectsCompleted
	recap.EnergyChange = after.Energy - before.Energy
	recap.StressChange = after.Stress - before.Stress
	recap.Lines = recapLines(recap)
	return recap
}

func recapLines(r Recap) []RecapLine {
	lines := []RecapLine{{
		Summary: fmt.Sprintf("You were away for %s.", awayFor(r.Elapsed)),
		Impact:  ImpactNeutral,
	}}
	if r.Simulated < r.Elapsed {
		lines = append(lines, RecapLine{
			Summary: fmt.Sprintf("Only the first %s counted toward progress.", r.Simulated),
			Impact:  ImpactNeutral,
		})
	}
	if r.MoneyEarned > 0 {
		lines = append(lines, RecapLine{
			Summary: fmt.Sprintf("Your team earned $%s.", humanize.CommafWithDigits(r.MoneyEarned, 2)),
			Impact:  ImpactPositive,
		})
	}
	if r.ProjectsCompleted > 0 {
		lines = append(lines, RecapLine{
			Summary: fmt.Sprintf("%d project(s) shipped for %s XP.", r.ProjectsCompleted, humanize.Comma(r.XPGained)),
			Impact:  ImpactPositive,
		})
	}
	if r.EnergyChange < 0 {
		lines = append(lines, RecapLine{
			Summary: fmt.Sprintf("Energy fell by %.1f.", -r.EnergyChange),
			Impact:  ImpactNegative,
		})
	}
	if r.StressChange > 0 {
		lines = append(lines, RecapLine{
			Summary: fmt.Sprintf("Stress rose by %.1f.", r.StressChange),
			Impact:  ImpactNegative,
		})
	}
	return lines
}

func awayFor(d time.Duration) string {
	start := time.Unix(0, 0)
	return strings.TrimSpace(humanize.RelTime(start, start.Add(d), "", ""))
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
