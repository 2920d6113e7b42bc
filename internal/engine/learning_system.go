package engine

import (
	"fmt"

	"github.com/MRamiBalles/DevLearnAcademy/internal/catalog"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/rules"
)

// LearningSystem applies lessons, challenges, skill training and research.
// Every method validates first and mutates only on success.
type LearningSystem struct{}

func NewLearningSystem() *LearningSystem {
	return &LearningSystem{}
}

// Study completes a lesson.
func (ls *LearningSystem) Study(s *player.State, l catalog.Lesson) error {
	if s.Level < l.MinLevel {
		return fmt.Errorf("%w: %s needs level %d", ErrLevelTooLow, l.ID, l.MinLevel)
	}
	if s.Energy < l.EnergyCost {
		return fmt.Errorf("%w: %s costs %.0f", ErrNotEnoughEnergy, l.ID, l.EnergyCost)
	}
	s.Energy -= l.EnergyCost
	s.LessonsCompleted++
	return nil
}

// Practice completes a challenge and pays its money reward.
func (ls *LearningSystem) Practice(s *player.State, c catalog.Challenge) error {
	if s.Level < c.MinLevel {
		return fmt.Errorf("%w: %s needs level %d", ErrLevelTooLow, c.ID, c.MinLevel)
	}
	if s.Energy < c.EnergyCost {
		return fmt.Errorf("%w: %s costs %.0f", ErrNotEnoughEnergy, c.ID, c.EnergyCost)
	}
	s.Energy -= c.EnergyCost
	s.Stress += c.Stress
	s.ChallengesCompleted++
	s.Earn(c.Money)
	return nil
}

// Train raises a skill by one level and returns the new level and its price.
func (ls *LearningSystem) Train(s *player.State, sk catalog.Skill) (int, float64, error) {
	current := s.SkillLevel(sk.ID)
	if current >= sk.MaxLevel {
		return current, 0, fmt.Errorf("%w: %s", ErrSkillMaxed, sk.ID)
	}
	cost := rules.SkillUpgradeCost(sk.BaseCost, sk.CostGrowth, current)
	if !s.Spend(cost) {
		return current, cost, fmt.Errorf("%w: %s costs %.2f", ErrInsufficientFunds, sk.ID, cost)
	}
	if s.Skills == nil {
		s.Skills = make(map[string]int)
	}
	s.Skills[sk.ID] = current + 1
	return current + 1, cost, nil
}

// Research unlocks a technology once its prerequisites are known.
func (ls *LearningSystem) Research(s *player.State, t catalog.Technology) error {
	if s.HasTechnology(t.ID) {
		return fmt.Errorf("%w: %s", ErrAlreadyResearched, t.ID)
	}
	if s.Level < t.MinLevel {
		return fmt.Errorf("%w: %s needs level %d", ErrLevelTooLow, t.ID, t.MinLevel)
	}
	for _, req := range t.Requires {
		if !s.HasTechnology(req) {
			return fmt.Errorf("%w: %s requires %s", ErrMissingPrerequisite, t.ID, req)
		}
	}
	if !s.Spend(t.Cost) {
		return fmt.Errorf("%w: %s costs %.2f", ErrInsufficientFunds, t.ID, t.Cost)
	}
	if s.Technologies == nil {
		s.Technologies = make(map[string]bool)
	}
	s.Technologies[t.ID] = true
	return nil
}
