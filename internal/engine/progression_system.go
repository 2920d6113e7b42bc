package engine

import (
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/rules"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

// XPChange records one XP grant so its events can be published after the state commits.
type XPChange struct {
	Amount int64
	Total  int64
	From   int
	To     int
	Source string
}

// ProgressionSystem owns XP and levels.
type ProgressionSystem struct {
	bus        *events.Bus
	logger     *logger.Logger
	xpPerLevel int64
}

// NewProgressionSystem creates a progression system using xpPerLevel for the level curve.
func NewProgressionSystem(bus *events.Bus, log *logger.Logger, xpPerLevel int64) *ProgressionSystem {
	return &ProgressionSystem{bus: bus, logger: log, xpPerLevel: xpPerLevel}
}

// Grant adds XP and recomputes the level. Must be called inside a store update.
func (ps *ProgressionSystem) Grant(s *player.State, amount int64, source string) XPChange {
	from := s.Level
	if amount > 0 {
		s.XP += amount
	} else {
		amount = 0
	}
	if lvl := rules.LevelForXP(s.XP, ps.xpPerLevel); lvl > s.Level {
		s.Level = lvl
	}
	return XPChange{Amount: amount, Total: s.XP, From: from, To: s.Level, Source: source}
}

// Publish announces a committed change: XP_GAINED, then LEVEL_UP if the level moved.
func (ps *ProgressionSystem) Publish(c XPChange) {
	if c.Amount > 0 {
		ps.bus.Publish(events.XPGainedPayload{Amount: c.Amount, Total: c.Total, Source: c.Source})
	}
	if c.To > c.From {
		ps.logger.Info("level up", "from", c.From, "to", c.To)
		ps.bus.Publish(events.LevelUpPayload{From: c.From, To: c.To})
	}
}
