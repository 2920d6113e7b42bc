package engine

import (
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/developer"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/rules"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
)

// ProductionSystem pays out the team's passive income.
type ProductionSystem struct {
	rules config.Rules
}

func NewProductionSystem(r config.Rules) *ProductionSystem {
	return &ProductionSystem{rules: r}
}

// Rate returns money per second for the current state.
func (ps *ProductionSystem) Rate(s player.State) float64 {
	return developer.TeamProductivity(s.Developers) * rules.StressPenalty(s.Stress, ps.rules.MaxStress)
}

// Apply credits seconds of income and returns the amount earned.
func (ps *ProductionSystem) Apply(s *player.State, seconds float64) float64 {
	earned := ps.Rate(*s) * seconds
	s.Earn(earned)
	return earned
}

// ClickValue is the money earned by one manual click.
func (ps *ProductionSystem) ClickValue(s player.State) float64 {
	return rules.ClickValue(ps.rules.ClickMoney, s.TotalSkillLevels())
}
