package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DevLearnAcademy/internal/catalog"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
)

const testCatalogYAML = `
lessons:
  - {id: intro, name: Intro, energy_cost: 10, xp: 30}
  - {id: advanced, name: Advanced, energy_cost: 10, xp: 50, min_level: 3}
challenges:
  - {id: kata, name: Kata, energy_cost: 20, stress: 10, xp: 40, money: 25}
projects:
  - {id: site, name: Site, effort: 10, reward_money: 100, reward_xp: 60}
  - {id: big, name: Big, effort: 100, min_level: 5, reward_money: 1, reward_xp: 1}
roles:
  - {id: intern, name: Intern, cost: 40, productivity: 2, speed: 1}
skills:
  - {id: go, name: Go, max_level: 2, base_cost: 10, cost_growth: 2}
technologies:
  - {id: git, name: Git, cost: 5}
  - {id: docker, name: Docker, cost: 10, requires: [git]}
achievements:
  - id: first-click
    name: First Click
    description: Click once.
    reward_xp: 5
    requires: {stats: {clicks: 1}}
  - id: scholar
    name: Scholar
    description: Finish a lesson.
    reward_xp: 20
    requires: {stats: {lessons_completed: 1}}
  - id: level-two
    name: Level Two
    description: Reach level 2.
    reward_xp: 10
    requires: {stats: {level: 2}}
  - id: dockerized
    name: Dockerized
    description: Research Docker.
    reward_xp: 0
    requires: {technologies: [docker]}
`

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type testRig struct {
	engine   *Engine
	bus      *events.Bus
	recorder *events.Recorder
	clock    *ManualClock
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	return cat
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("dev-%d", n)
	}
}

// newRig builds an engine whose event recorder is subscribed before any system,
// so recorded order is emission order.
func newRig(t *testing.T, opts ...Option) *testRig {
	t.Helper()
	bus := events.NewBus(nil, events.WithClock(func() time.Time { return epoch }))
	rec := events.NewRecorder(1024)
	rec.Attach(bus)

	clock := NewManualClock(epoch)
	opts = append([]Option{WithClock(clock), WithIDGenerator(sequentialIDs())}, opts...)
	e := NewEngine(bus, testCatalog(t), config.DefaultRules(), nil, opts...)
	t.Cleanup(e.Close)

	return &testRig{engine: e, bus: bus, recorder: rec, clock: clock}
}
