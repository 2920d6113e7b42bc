package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/DevLearnAcademy/internal/catalog"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/developer"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/rules"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/metrics"
	"github.com/MRamiBalles/DevLearnAcademy/internal/save"
	"github.com/MRamiBalles/DevLearnAcademy/internal/state"
)

// Engine is the central orchestrator: it owns the store, the systems and the ticker,
// and is the only entry point for player actions.
type Engine struct {
	bus     *events.Bus
	store   *state.Store
	catalog *catalog.Catalog
	rules   config.Rules
	logger  *logger.Logger
	ticker  *Ticker

	gateway    *save.Gateway
	metrics    *metrics.Collector
	clock      TimeProvider
	newID      func() string
	maxCatchUp time.Duration
	tickNumber atomic.Int64

	// Sub-systems
	resources    *ResourceSystem
	production   *ProductionSystem
	projects     *ProjectSystem
	learning     *LearningSystem
	progression  *ProgressionSystem
	achievements *AchievementSystem
}

// Option configures an Engine.
type Option func(*Engine)

// WithGateway enables Save, Load and Reset against a save slot.
func WithGateway(g *save.Gateway) Option {
	return func(e *Engine) { e.gateway = g }
}

// WithMetrics records tick latency and save outcomes.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock sets the time source for the ticker, timestamps and offline catch-up.
func WithClock(c TimeProvider) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGenerator overrides how hired developers are identified.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// WithTickInterval sets the real-time loop period.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.ticker.interval = d
		}
	}
}

// WithMaxCatchUp caps how much offline time a load simulates.
func WithMaxCatchUp(d time.Duration) Option {
	return func(e *Engine) { e.maxCatchUp = d }
}

// WithInitialState seeds the store instead of a fresh player.
func WithInitialState(s player.State) Option {
	return func(e *Engine) { e.store.Replace(s, "init") }
}

// NewEngine initializes the core game systems and dependencies.
func NewEngine(bus *events.Bus, cat *catalog.Catalog, r config.Rules, log *logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	e := &Engine{
		bus:        bus,
		catalog:    cat,
		rules:      r,
		logger:     log,
		clock:      RealTimeProvider{},
		newID:      uuid.NewString,
		maxCatchUp: 8 * time.Hour,
		store: state.NewStore(player.New(r.StartingMoney, r.MaxEnergy),
			state.Limits{MaxEnergy: r.MaxEnergy, MaxStress: r.MaxStress}, bus),

		resources:   NewResourceSystem(bus, log, r),
		production:  NewProductionSystem(r),
		projects:    NewProjectSystem(cat, log, r),
		learning:    NewLearningSystem(),
		progression: NewProgressionSystem(bus, log, r.XPPerLevel),
	}
	e.ticker = NewTicker(e, nil, DefaultTickRate, log)
	for _, opt := range opts {
		opt(e)
	}
	e.ticker.clock = e.clock
	e.ticker.last = e.clock.Now()

	e.achievements = NewAchievementSystem(e.store, bus, log, e.progression, cat.Achievements)
	e.achievements.Attach()
	return e
}

// Start runs the real-time loop until ctx is done or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("starting game engine")
	e.ticker.Start(ctx)
}

// Stop halts the real-time loop.
func (e *Engine) Stop() {
	e.ticker.Stop()
}

// Close stops the loop and detaches the engine's own subscriptions.
func (e *Engine) Close() {
	e.Stop()
	e.achievements.Detach()
}

// Running reports whether the real-time loop is active.
func (e *Engine) Running() bool {
	return e.ticker.Running()
}

func (e *Engine) Bus() *events.Bus          { return e.bus }
func (e *Engine) Store() *state.Store       { return e.store }
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }
func (e *Engine) Rules() config.Rules       { return e.rules }

// Snapshot returns a copy of the current player state.
func (e *Engine) Snapshot() player.State {
	return e.store.Snapshot()
}

// Rates reports the current passive money and project effort per second.
func (e *Engine) Rates() (moneyPerSec, effortPerSec float64) {
	s := e.store.Snapshot()
	return e.production.Rate(s), e.projects.Rate(s)
}

// Evaluate runs the achievement evaluator immediately and returns new unlocks.
func (e *Engine) Evaluate() []string {
	return e.achievements.Evaluate()
}

// Update advances the simulation by delta. Negative deltas are treated as zero.
func (e *Engine) Update(delta time.Duration) {
	started := time.Now()
	if delta < 0 {
		delta = 0
	}
	seconds := delta.Seconds()

	var energyBefore, stressBefore float64
	var completed *catalog.Project
	var xp XPChange
	after := e.store.Update("tick", func(s *player.State) {
		energyBefore, stressBefore = s.Energy, s.Stress
		e.resources.Apply(s, seconds)
		e.production.Apply(s, seconds)
		if done := e.projects.Advance(s, seconds); done != nil {
			completed = done
			xp = e.progression.Grant(s, done.RewardXP, "project:"+done.ID)
		}
		s.PlaySeconds += seconds
	})

	e.bus.Publish(events.TickPayload{
		TickNumber: e.tickNumber.Add(1),
		DeltaMs:    float64(delta) / float64(time.Millisecond),
		Energy:     after.Energy,
		Stress:     after.Stress,
		Money:      after.Money,
	})
	e.resources.PublishCrossings(energyBefore, stressBefore, after)

	if completed != nil {
		e.logger.Info("project completed", "project", completed.ID)
		e.progression.Publish(xp)
		e.bus.Publish(events.ProjectCompletedPayload{
			ProjectID:   completed.ID,
			RewardMoney: completed.RewardMoney,
			RewardXP:    completed.RewardXP,
			Total:       after.ProjectsCompleted,
		})
	}

	if e.metrics != nil {
		e.metrics.RecordTick(time.Since(started))
	}
}

// act runs a validated mutation. On error nothing changes and an *ActionError is returned.
func (e *Engine) act(action string, fn func(s *player.State) error) (player.State, error) {
	var energyBefore, stressBefore float64
	after, err := e.store.TryUpdate(action, func(s *player.State) error {
		energyBefore, stressBefore = s.Energy, s.Stress
		return fn(s)
	})
	if err != nil {
		e.logger.Debug("action rejected", "action", action, "error", err)
		return after, actionError(action, err)
	}
	e.resources.PublishCrossings(energyBefore, stressBefore, after)
	return after, nil
}

func unknown(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownItem, kind, id)
}

// Click writes a line of code: money and XP per click.
func (e *Engine) Click() error {
	var earned float64
	var xp XPChange
	after, err := e.act("click", func(s *player.State) error {
		earned = e.production.ClickValue(*s)
		s.Clicks++
		s.Earn(earned)
		xp = e.progression.Grant(s, e.rules.ClickXP, "click")
		return nil
	})
	if err != nil {
		return err
	}
	e.progression.Publish(xp)
	e.bus.Publish(events.CodeClickedPayload{Clicks: after.Clicks, Earned: earned})
	return nil
}

// CompleteLesson studies a lesson from the catalog.
func (e *Engine) CompleteLesson(id string) error {
	lesson, ok := e.catalog.Lesson(id)
	if !ok {
		return actionError("lesson", unknown("lesson", id))
	}
	var xp XPChange
	after, err := e.act("lesson", func(s *player.State) error {
		if err := e.learning.Study(s, lesson); err != nil {
			return err
		}
		xp = e.progression.Grant(s, lesson.XP, "lesson:"+id)
		return nil
	})
	if err != nil {
		return err
	}
	e.progression.Publish(xp)
	e.bus.Publish(events.LessonCompletedPayload{LessonID: id, Total: after.LessonsCompleted})
	return nil
}

// CompleteChallenge attempts a coding challenge.
func (e *Engine) CompleteChallenge(id string) error {
	ch, ok := e.catalog.Challenge(id)
	if !ok {
		return actionError("challenge", unknown("challenge", id))
	}
	var xp XPChange
	after, err := e.act("challenge", func(s *player.State) error {
		if err := e.learning.Practice(s, ch); err != nil {
			return err
		}
		xp = e.progression.Grant(s, ch.XP, "challenge:"+id)
		return nil
	})
	if err != nil {
		return err
	}
	e.progression.Publish(xp)
	e.bus.Publish(events.ChallengeCompletedPayload{ChallengeID: id, Reward: ch.Money, Total: after.ChallengesCompleted})
	return nil
}

// StartProject makes a catalog project the active one.
func (e *Engine) StartProject(id string) error {
	def, ok := e.catalog.Project(id)
	if !ok {
		return actionError("start_project", unknown("project", id))
	}
	now := e.clock.Now().UnixMilli()
	if _, err := e.act("start_project", func(s *player.State) error {
		return e.projects.Start(s, def, now)
	}); err != nil {
		return err
	}
	e.logger.Info("project started", "project", id, "effort", def.Effort)
	e.bus.Publish(events.ProjectStartedPayload{ProjectID: id, Effort: def.Effort})
	return nil
}

// CancelProject abandons the active project without reward.
func (e *Engine) CancelProject() error {
	var id string
	_, err := e.act("cancel_project", func(s *player.State) error {
		var err error
		id, err = e.projects.Cancel(s)
		return err
	})
	if err != nil {
		return err
	}
	e.logger.Info("project cancelled", "project", id)
	return nil
}

// HireDeveloper adds a developer of the given role to the team.
func (e *Engine) HireDeveloper(roleID string) error {
	role, ok := e.catalog.Role(roleID)
	if !ok {
		return actionError("hire", unknown("role", roleID))
	}
	id := e.newID()
	now := e.clock.Now().UnixMilli()

	var cost float64
	after, err := e.act("hire", func(s *player.State) error {
		if s.Level < role.MinLevel {
			return fmt.Errorf("%w: %s needs level %d", ErrLevelTooLow, role.ID, role.MinLevel)
		}
		cost = rules.HireCost(role.Cost, developer.CountRole(s.Developers, developer.Role(role.ID)))
		if !s.Spend(cost) {
			return fmt.Errorf("%w: %s costs %.2f", ErrInsufficientFunds, role.ID, cost)
		}
		s.Developers = append(s.Developers, developer.Developer{
			ID:           id,
			Role:         developer.Role(role.ID),
			Name:         role.Name,
			Productivity: role.Productivity,
			Speed:        role.Speed,
			HiredAt:      now,
		})
		return nil
	})
	if err != nil {
		return err
	}
	e.logger.Info("developer hired", "role", role.ID, "cost", cost)
	e.bus.Publish(events.DeveloperHiredPayload{DeveloperID: id, Role: role.ID, Cost: cost, TeamSize: len(after.Developers)})
	return nil
}

// ResearchTechnology unlocks a technology.
func (e *Engine) ResearchTechnology(id string) error {
	tech, ok := e.catalog.Technology(id)
	if !ok {
		return actionError("research", unknown("technology", id))
	}
	if _, err := e.act("research", func(s *player.State) error {
		return e.learning.Research(s, tech)
	}); err != nil {
		return err
	}
	e.bus.Publish(events.TechnologyResearchedPayload{TechnologyID: id, Cost: tech.Cost})
	return nil
}

// UpgradeSkill trains a skill one level.
func (e *Engine) UpgradeSkill(id string) error {
	sk, ok := e.catalog.Skill(id)
	if !ok {
		return actionError("upgrade_skill", unknown("skill", id))
	}
	var level int
	var cost float64
	if _, err := e.act("upgrade_skill", func(s *player.State) error {
		var err error
		level, cost, err = e.learning.Train(s, sk)
		return err
	}); err != nil {
		return err
	}
	e.bus.Publish(events.SkillUpgradedPayload{SkillID: id, Level: level, Cost: cost})
	return nil
}

// Rest restores energy and relieves stress.
func (e *Engine) Rest() error {
	after, err := e.act("rest", func(s *player.State) error {
		e.resources.Rest(s)
		return nil
	})
	if err != nil {
		return err
	}
	e.bus.Publish(events.RestedPayload{Energy: after.Energy, Stress: after.Stress})
	return nil
}
