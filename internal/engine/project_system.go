package engine

import (
	"fmt"

	"github.com/MRamiBalles/DevLearnAcademy/internal/catalog"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/developer"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/project"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/rules"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

// ProjectSystem advances the active project each tick.
type ProjectSystem struct {
	catalog *catalog.Catalog
	logger  *logger.Logger
	rules   config.Rules
}

func NewProjectSystem(cat *catalog.Catalog, log *logger.Logger, r config.Rules) *ProjectSystem {
	return &ProjectSystem{catalog: cat, logger: log, rules: r}
}

// Start makes def the active project.
func (ps *ProjectSystem) Start(s *player.State, def catalog.Project, nowMs int64) error {
	if s.ActiveProject != nil {
		return fmt.Errorf("%w: %s", ErrProjectInProgress, s.ActiveProject.ID)
	}
	if s.Level < def.MinLevel {
		return fmt.Errorf("%w: %s needs level %d", ErrLevelTooLow, def.ID, def.MinLevel)
	}
	s.ActiveProject = &project.Active{ID: def.ID, Effort: def.Effort, StartedAt: nowMs}
	return nil
}

// Cancel drops the active project without reward.
func (ps *ProjectSystem) Cancel(s *player.State) (string, error) {
	if s.ActiveProject == nil {
		return "", ErrNoActiveProject
	}
	id := s.ActiveProject.ID
	s.ActiveProject = nil
	return id, nil
}

// Rate returns effort per second for the current state.
func (ps *ProjectSystem) Rate(s player.State) float64 {
	base := ps.rules.BaseProjectRate + developer.TeamSpeed(s.Developers)
	return base * rules.StressPenalty(s.Stress, ps.rules.MaxStress)
}

// Advance works on the active project for seconds. When it finishes, the reward money is
// credited and its definition returned; granting the reward XP is left to the caller.
func (ps *ProjectSystem) Advance(s *player.State, seconds float64) *catalog.Project {
	active := s.ActiveProject
	if active == nil || seconds <= 0 {
		return nil
	}
	if !active.Advance(ps.Rate(*s) * seconds) {
		return nil
	}

	s.ActiveProject = nil
	def, ok := ps.catalog.Project(active.ID)
	if !ok {
		ps.logger.Warn("completed project missing from catalog, no reward", "project", active.ID)
		return nil
	}
	s.ProjectsCompleted++
	s.Earn(def.RewardMoney)
	return &def
}
