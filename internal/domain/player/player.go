// Package player defines the aggregate of all player-progress data.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package player

import (
	"fmt"
	"math"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/developer"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/project"
)

// Stat names a numeric quantity of the state that requirements can test.
type Stat string

const (
	StatMoney               Stat = "money"
	StatTotalEarned         Stat = "total_earned"
	StatXP                  Stat = "xp"
	StatLevel               Stat = "level"
	StatClicks              Stat = "clicks"
	StatLessonsCompleted    Stat = "lessons_completed"
	StatChallengesCompleted Stat = "challenges_completed"
	StatProjectsCompleted   Stat = "projects_completed"
	StatDevelopers          Stat = "developers"
)

// KnownStats lists every stat a requirement may reference.
var KnownStats = []Stat{
	StatMoney, StatTotalEarned, StatXP, StatLevel, StatClicks,
	StatLessonsCompleted, StatChallengesCompleted, StatProjectsCompleted, StatDevelopers,
}

// State represents everything the player has accumulated.
type State struct {
	// Resources
	Money       float64 `json:"money"`
	TotalEarned float64 `json:"total_earned"`
	Energy      float64 `json:"energy"` // 0-MaxEnergy
	Stress      float64 `json:"stress"` // 0-MaxStress

	// Progression
	XP    int64 `json:"xp"`
	Level int   `json:"level"`

	// Counters
	Clicks              int64   `json:"clicks"`
	LessonsCompleted    int64   `json:"lessons_completed"`
	ChallengesCompleted int64   `json:"challenges_completed"`
	ProjectsCompleted   int64   `json:"projects_completed"`
	PlaySeconds         float64 `json:"play_seconds"`

	// Collections
	Achievements  map[string]bool       `json:"achievements"`  // unlocked ids
	Skills        map[string]int        `json:"skills"`        // skill id -> level
	Technologies  map[string]bool       `json:"technologies"`  // technology id -> researched
	Developers    []developer.Developer `json:"developers"`    // hired team
	ActiveProject *project.Active       `json:"active_project"` // nil when idle
}

// New creates a fresh player with full energy and no stress.
func New(startingMoney, maxEnergy float64) State {
	return State{
		Money:        startingMoney,
		Energy:       maxEnergy,
		Level:        1,
		Achievements: make(map[string]bool),
		Skills:       make(map[string]int),
		Technologies: make(map[string]bool),
		Developers:   []developer.Developer{},
	}
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s State) Clone() State {
	c := s
	c.Achievements = make(map[string]bool, len(s.Achievements))
	for k, v := range s.Achievements {
		c.Achievements[k] = v
	}
	c.Skills = make(map[string]int, len(s.Skills))
	for k, v := range s.Skills {
		c.Skills[k] = v
	}
	c.Technologies = make(map[string]bool, len(s.Technologies))
	for k, v := range s.Technologies {
		c.Technologies[k] = v
	}
	c.Developers = make([]developer.Developer, len(s.Developers))
	copy(c.Developers, s.Developers)
	if s.ActiveProject != nil {
		p := *s.ActiveProject
		c.ActiveProject = &p
	}
	return c
}

// Clamp forces energy and stress back into their ranges.
func (s *State) Clamp(maxEnergy, maxStress float64) {
	s.Energy = clamp(s.Energy, 0, maxEnergy)
	s.Stress = clamp(s.Stress, 0, maxStress)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Earn adds income, tracking the lifetime total.
func (s *State) Earn(amount float64) {
	if amount <= 0 {
		return
	}
	s.Money += amount
	s.TotalEarned += amount
}

// Spend deducts amount if affordable.
func (s *State) Spend(amount float64) bool {
	if amount > s.Money {
		return false
	}
	s.Money -= amount
	return true
}

// HasAchievement reports whether id is unlocked.
func (s State) HasAchievement(id string) bool {
	return s.Achievements[id]
}

// Unlock marks id as unlocked. Returns false if it already was.
func (s *State) Unlock(id string) bool {
	if s.Achievements == nil {
		s.Achievements = make(map[string]bool)
	}
	if s.Achievements[id] {
		return false
	}
	s.Achievements[id] = true
	return true
}

// SkillLevel returns the trained level of a skill (0 if untrained).
func (s State) SkillLevel(id string) int {
	return s.Skills[id]
}

// TotalSkillLevels sums the levels of every trained skill.
func (s State) TotalSkillLevels() int {
	n := 0
	for _, lvl := range s.Skills {
		n += lvl
	}
	return n
}

// HasTechnology reports whether a technology has been researched.
func (s State) HasTechnology(id string) bool {
	return s.Technologies[id]
}

// Stat reads a named numeric stat.
func (s State) Stat(name Stat) (float64, bool) {
	switch name {
	case StatMoney:
		return s.Money, true
	case StatTotalEarned:
		return s.TotalEarned, true
	case StatXP:
		return float64(s.XP), true
	case StatLevel:
		return float64(s.Level), true
	case StatClicks:
		return float64(s.Clicks), true
	case StatLessonsCompleted:
		return float64(s.LessonsCompleted), true
	case StatChallengesCompleted:
		return float64(s.ChallengesCompleted), true
	case StatProjectsCompleted:
		return float64(s.ProjectsCompleted), true
	case StatDevelopers:
		return float64(len(s.Developers)), true
	}
	return 0, false
}

// IsKnownStat reports whether name is a stat Stat can read.
func IsKnownStat(name Stat) bool {
	_, ok := State{}.Stat(name)
	return ok
}

// Validate checks the invariants a loaded or imported state must satisfy.
func (s State) Validate(maxEnergy, maxStress float64) error {
	if s.Energy < 0 || s.Energy > maxEnergy || math.IsNaN(s.Energy) {
		return fmt.Errorf("energy %v outside [0, %v]", s.Energy, maxEnergy)
	}
	if s.Stress < 0 || s.Stress > maxStress || math.IsNaN(s.Stress) {
		return fmt.Errorf("stress %v outside [0, %v]", s.Stress, maxStress)
	}
	if s.XP < 0 {
		return fmt.Errorf("negative xp %d", s.XP)
	}
	if s.Level < 1 {
		return fmt.Errorf("level %d below 1", s.Level)
	}
	if math.IsNaN(s.Money) || math.IsInf(s.Money, 0) {
		return fmt.Errorf("money is not a finite number")
	}
	return nil
}
