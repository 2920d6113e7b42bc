package engine

import (
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/rules"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

// ResourceSystem drains energy, builds stress, and raises threshold warnings.
type ResourceSystem struct {
	bus    *events.Bus
	logger *logger.Logger
	rules  config.Rules
}

func NewResourceSystem(bus *events.Bus, log *logger.Logger, r config.Rules) *ResourceSystem {
	return &ResourceSystem{bus: bus, logger: log, rules: r}
}

// Apply advances energy and stress by seconds of elapsed time.
func (rs *ResourceSystem) Apply(s *player.State, seconds float64) {
	s.Energy = rules.DrainEnergy(s.Energy, rs.rules.EnergyDecayPerSec, seconds, rs.rules.MaxEnergy)
	s.Stress = rules.AccrueStress(s.Stress, rs.rules.StressGainPerSec, seconds, rs.rules.MaxStress)
}

// Rest restores energy and relieves stress.
func (rs *ResourceSystem) Rest(s *player.State) {
	s.Energy = rules.Clamp(s.Energy+rs.rules.RestEnergy, 0, rs.rules.MaxEnergy)
	s.Stress = rules.Clamp(s.Stress-rs.rules.RestStressRelief, 0, rs.rules.MaxStress)
}

// PublishCrossings emits ENERGY_LOW and STRESS_HIGH once per crossing, comparing the
// values before a mutation with the committed state.
func (rs *ResourceSystem) PublishCrossings(energyBefore, stressBefore float64, after player.State) {
	if rules.CrossedBelow(energyBefore, after.Energy, rs.rules.EnergyLowThreshold) {
		rs.logger.Warn("energy low", "energy", after.Energy)
		rs.bus.Publish(events.EnergyLowPayload{Energy: after.Energy, Threshold: rs.rules.EnergyLowThreshold})
	}
	if rules.CrossedAbove(stressBefore, after.Stress, rs.rules.StressHighThreshold) {
		rs.logger.Warn("stress high", "stress", after.Stress)
		rs.bus.Publish(events.StressHighPayload{Stress: after.Stress, Threshold: rs.rules.StressHighThreshold})
	}
}
