// Package test - soak.go
// Soak test: random play against a real engine while checking the state
// invariants after every step.
package test

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/MRamiBalles/DevLearnAcademy/internal/catalog"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/rules"
	"github.com/MRamiBalles/DevLearnAcademy/internal/engine"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/storage"
	"github.com/MRamiBalles/DevLearnAcademy/internal/network"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
	"github.com/MRamiBalles/DevLearnAcademy/internal/save"
)

// TestResult captures the outcome of one soak scenario.
type TestResult struct {
	ScenarioName string
	Steps        int
	Rejected     int
	Violations   []string
	Passed       bool
}

// SoakTest drives an engine with random actions and ticks.
type SoakTest struct {
	engine   *engine.Engine
	rules    config.Rules
	catalog  *catalog.Catalog
	rng      *rand.Rand
	logger   *logger.Logger
	unlocked map[string]int
	results  []TestResult
}

// NewSoakTest builds an engine over the built-in catalog and an in-memory save slot.
func NewSoakTest(seed int64, log *logger.Logger) (*SoakTest, error) {
	if log == nil {
		log = logger.Discard()
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	r := config.DefaultRules()
	bus := events.NewBus(log)
	clock := engine.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	gw := save.NewGateway(storage.NewMemorySlotStore(), "soak", log, save.WithClock(clock.Now))

	t := &SoakTest{
		engine: engine.NewEngine(bus, cat, r, log,
			engine.WithGateway(gw),
			engine.WithClock(clock),
		),
		rules:    r,
		catalog:  cat,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   log,
		unlocked: make(map[string]int),
	}
	events.On(bus, func(p events.AchievementUnlockedPayload) error {
		t.unlocked[p.Achievement.ID]++
		return nil
	})
	return t, nil
}

// Close releases the engine.
func (t *SoakTest) Close() {
	t.engine.Close()
}

// RunTest executes every scenario.
func (t *SoakTest) RunTest(ctx context.Context, steps int) {
	t.results = append(t.results, t.randomPlay(ctx, steps))
	t.results = append(t.results, t.saveRoundTrip(ctx))
}

// GetResults returns the scenario outcomes.
func (t *SoakTest) GetResults() []TestResult {
	return t.results
}

func (t *SoakTest) randomActions() []network.PlayerAction {
	actions := []network.PlayerAction{
		{Type: network.ActionClick},
		{Type: network.ActionRest},
		{Type: network.ActionCancelProject},
	}
	for _, l := range t.catalog.Lessons {
		actions = append(actions, network.PlayerAction{Type: network.ActionLesson, ID: l.ID})
	}
	for _, c := range t.catalog.Challenges {
		actions = append(actions, network.PlayerAction{Type: network.ActionChallenge, ID: c.ID})
	}
	for _, p := range t.catalog.Projects {
		actions = append(actions, network.PlayerAction{Type: network.ActionStartProject, ID: p.ID})
	}
	for _, r := range t.catalog.Roles {
		actions = append(actions, network.PlayerAction{Type: network.ActionHire, ID: r.ID})
	}
	for _, s := range t.catalog.Skills {
		actions = append(actions, network.PlayerAction{Type: network.ActionUpgradeSkill, ID: s.ID})
	}
	for _, tech := range t.catalog.Technologies {
		actions = append(actions, network.PlayerAction{Type: network.ActionResearch, ID: tech.ID})
	}
	return actions
}

func (t *SoakTest) randomPlay(ctx context.Context, steps int) TestResult {
	res := TestResult{ScenarioName: "random play"}
	actions := t.randomActions()
	prev := t.engine.Snapshot()

	for i := 0; i < steps && ctx.Err() == nil; i++ {
		if t.rng.Intn(4) == 0 {
			t.engine.Update(time.Duration(t.rng.Intn(5000)) * time.Millisecond)
		} else {
			action := actions[t.rng.Intn(len(actions))]
			if err := network.Dispatch(t.engine, action); err != nil {
				res.Rejected++
				if engine.CodeOf(err) == engine.CodeUnknown {
					res.Violations = append(res.Violations, fmt.Sprintf("step %d: %s failed without a code: %v", i, action.Type, err))
				}
			}
		}
		next := t.engine.Snapshot()
		for _, v := range t.check(prev, next) {
			res.Violations = append(res.Violations, fmt.Sprintf("step %d: %s", i, v))
		}
		prev = next
		res.Steps++
	}
	for id, n := range t.unlocked {
		if n != 1 {
			res.Violations = append(res.Violations, fmt.Sprintf("achievement %s announced %d times", id, n))
		}
	}
	res.Passed = len(res.Violations) == 0
	t.logger.Info("soak finished", "steps", res.Steps, "rejected", res.Rejected, "violations", len(res.Violations))
	return res
}

func (t *SoakTest) saveRoundTrip(ctx context.Context) TestResult {
	res := TestResult{ScenarioName: "save round trip", Steps: 1}
	before := t.engine.Snapshot()
	if !t.engine.Save(ctx) {
		res.Violations = append(res.Violations, "save failed")
	}
	t.engine.Update(time.Minute)
	if _, found := t.engine.Load(ctx); !found {
		res.Violations = append(res.Violations, "load found nothing")
	}
	after := t.engine.Snapshot()
	if after.Clicks != before.Clicks || after.Money != before.Money || after.Energy != before.Energy ||
		len(after.Developers) != len(before.Developers) || after.XP < before.XP {
		res.Violations = append(res.Violations, "loaded state differs from saved state")
	}
	res.Passed = len(res.Violations) == 0
	return res
}

// check returns every invariant next violates, given the previous state.
func (t *SoakTest) check(prev, next player.State) []string {
	var out []string
	if next.Energy < 0 || next.Energy > t.rules.MaxEnergy {
		out = append(out, fmt.Sprintf("energy %v out of range", next.Energy))
	}
	if next.Stress < 0 || next.Stress > t.rules.MaxStress {
		out = append(out, fmt.Sprintf("stress %v out of range", next.Stress))
	}
	if next.XP < prev.XP {
		out = append(out, fmt.Sprintf("xp decreased from %d to %d", prev.XP, next.XP))
	}
	if want := rules.LevelForXP(next.XP, t.rules.XPPerLevel); next.Level != want {
		out = append(out, fmt.Sprintf("level %d, want %d for %d xp", next.Level, want, next.XP))
	}
	if next.Money < 0 {
		out = append(out, fmt.Sprintf("money went negative: %v", next.Money))
	}
	for id := range prev.Achievements {
		if !next.Achievements[id] {
			out = append(out, "achievement revoked: "+id)
		}
	}
	return out
}

// Summary renders the results as a short report.
func Summary(results []TestResult) string {
	var b strings.Builder
	for _, r := range results {
		mark := "PASS"
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "%s  %-16s steps=%d rejected=%d\n", mark, r.ScenarioName, r.Steps, r.Rejected)
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "      %s\n", v)
		}
	}
	return b.String()
}
