// Package achievement defines unlockable milestones and their requirements.
// This package is PURE and must NOT import any infrastructure packages.
package achievement

import (
	"errors"
	"fmt"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
)

// ErrEmptyRequirement is returned for a definition that would unlock unconditionally.
var ErrEmptyRequirement = errors.New("achievement has no requirements")

// Achievement is a static definition loaded from the catalog.
type Achievement struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	RewardXP    int64       `json:"reward_xp" yaml:"reward_xp"`
	Requires    Requirement `json:"requires" yaml:"requires"`
}

// Requirement is a conjunction of thresholds. Every listed condition must hold.
type Requirement struct {
	Stats        map[player.Stat]float64 `json:"stats,omitempty" yaml:"stats"`               // stat >= value
	Skills       map[string]int          `json:"skills,omitempty" yaml:"skills"`             // skill level >= value
	Technologies []string                `json:"technologies,omitempty" yaml:"technologies"` // all researched
}

// Empty reports whether the requirement has no conditions.
func (r Requirement) Empty() bool {
	return len(r.Stats) == 0 && len(r.Skills) == 0 && len(r.Technologies) == 0
}

// Satisfied reports whether s meets every condition. An empty requirement is never satisfied.
func (r Requirement) Satisfied(s player.State) bool {
	if r.Empty() {
		return false
	}
	for stat, min := range r.Stats {
		v, ok := s.Stat(stat)
		if !ok || v < min {
			return false
		}
	}
	for skill, min := range r.Skills {
		if s.SkillLevel(skill) < min {
			return false
		}
	}
	for _, tech := range r.Technologies {
		if !s.HasTechnology(tech) {
			return false
		}
	}
	return true
}

// Validate checks the definition is well formed.
func (a Achievement) Validate() error {
	if a.ID == "" {
		return errors.New("achievement id is required")
	}
	if a.RewardXP < 0 {
		return fmt.Errorf("achievement %q: negative reward", a.ID)
	}
	if a.Requires.Empty() {
		return fmt.Errorf("achievement %q: %w", a.ID, ErrEmptyRequirement)
	}
	for stat := range a.Requires.Stats {
		if !player.IsKnownStat(stat) {
			return fmt.Errorf("achievement %q: unknown stat %q", a.ID, stat)
		}
	}
	return nil
}

// Eligible filters defs to those whose requirement s satisfies and that s has not yet unlocked.
// Declaration order is preserved.
func Eligible(defs []Achievement, s player.State) []Achievement {
	var out []Achievement
	for _, def := range defs {
		if s.HasAchievement(def.ID) {
			continue
		}
		if def.Requires.Satisfied(s) {
			out = append(out, def)
		}
	}
	return out
}
