package engine

import (
	"errors"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/achievement"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
	"github.com/MRamiBalles/DevLearnAcademy/internal/state"
)

// achievementTriggers are the events after which progress may have changed. Ticks never trigger evaluation.
// XP_GAINED and LEVEL_UP are absent: every grant is announced just before the action event
// that triggers evaluation, and reward XP chains inside Evaluate.
var achievementTriggers = []events.EventType{
	events.EventTypeCodeClicked,
	events.EventTypeLessonCompleted,
	events.EventTypeChallengeCompleted,
	events.EventTypeProjectCompleted,
	events.EventTypeDeveloperHired,
	events.EventTypeSkillUpgraded,
	events.EventTypeTechnologyResearched,
	events.EventTypeGameLoaded,
}

var errNothingUnlocked = errors.New("nothing unlocked")

// AchievementSystem unlocks achievements whose requirements the state meets.
type AchievementSystem struct {
	store       *state.Store
	bus         *events.Bus
	logger      *logger.Logger
	progression *ProgressionSystem
	defs        []achievement.Achievement
	tokens      []events.Token
}

// NewAchievementSystem creates an evaluator over defs, kept in declaration order.
func NewAchievementSystem(store *state.Store, bus *events.Bus, log *logger.Logger,
	progression *ProgressionSystem, defs []achievement.Achievement) *AchievementSystem {
	return &AchievementSystem{
		store:       store,
		bus:         bus,
		logger:      log,
		progression: progression,
		defs:        defs,
	}
}

// Attach subscribes the evaluator to its trigger events.
func (as *AchievementSystem) Attach() {
	if len(as.tokens) > 0 {
		return
	}
	for _, t := range achievementTriggers {
		as.tokens = append(as.tokens, as.bus.Subscribe(t, as.onTrigger))
	}
}

// Detach removes the evaluator's subscriptions.
func (as *AchievementSystem) Detach() {
	for _, tok := range as.tokens {
		tok.Unsubscribe()
	}
	as.tokens = nil
}

func (as *AchievementSystem) onTrigger(events.Event) error {
	as.Evaluate()
	return nil
}

// Evaluate unlocks every satisfied, not yet unlocked achievement and grants the rewards.
// It returns the ids unlocked by this call. Repeated calls with no progress unlock nothing.
// Rewards that satisfy further achievements unlock them in a following round, after the
// earlier round's XP_GAINED and LEVEL_UP have been published.
func (as *AchievementSystem) Evaluate() []string {
	var ids []string
	for {
		round := as.evaluateRound()
		if len(round) == 0 {
			return ids
		}
		ids = append(ids, round...)
	}
}

func (as *AchievementSystem) evaluateRound() []string {
	if len(achievement.Eligible(as.defs, as.store.Snapshot())) == 0 {
		return nil
	}

	var unlocked []achievement.Achievement
	var change XPChange
	_, err := as.store.TryUpdate("achievement", func(s *player.State) error {
		unlocked = unlocked[:0]
		var reward int64
		for _, def := range achievement.Eligible(as.defs, *s) {
			if s.Unlock(def.ID) {
				unlocked = append(unlocked, def)
				reward += def.RewardXP
			}
		}
		if len(unlocked) == 0 {
			return errNothingUnlocked
		}
		change = as.progression.Grant(s, reward, "achievements")
		return nil
	})
	if err != nil {
		return nil
	}

	ids := make([]string, 0, len(unlocked))
	for _, def := range unlocked {
		ids = append(ids, def.ID)
		as.logger.Info("achievement unlocked", "achievement", def.ID, "reward_xp", def.RewardXP)
		as.bus.Publish(events.AchievementUnlockedPayload{Achievement: def})
	}
	as.progression.Publish(change)
	return ids
}
