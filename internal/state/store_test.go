package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
)

var limits = Limits{MaxEnergy: 100, MaxStress: 100}

func newTestStore(t *testing.T) (*Store, *events.Recorder) {
	t.Helper()
	bus := events.NewBus(nil)
	rec := events.NewRecorder(64)
	rec.Attach(bus, events.EventTypeStateChanged)
	return NewStore(player.New(50, 100), limits, bus), rec
}

func TestSnapshotIsIsolated(t *testing.T) {
	store, _ := newTestStore(t)

	snap := store.Snapshot()
	snap.Money = 9999
	snap.Skills["go"] = 5

	again := store.Snapshot()
	assert.Equal(t, 50.0, again.Money)
	assert.Zero(t, again.SkillLevel("go"))
}

func TestUpdateClampsAndPublishes(t *testing.T) {
	store, rec := newTestStore(t)

	got := store.Update("test", func(s *player.State) {
		s.Energy = 150
		s.Stress = -3
	})

	assert.Equal(t, 100.0, got.Energy)
	assert.Equal(t, 0.0, got.Stress)

	evs := rec.Replay()
	require.Len(t, evs, 1)
	assert.Equal(t, events.StateChangedPayload{Cause: "test"}, evs[0].Payload)
}

func TestTryUpdateRollsBackOnError(t *testing.T) {
	store, rec := newTestStore(t)
	boom := errors.New("no")

	got, err := store.TryUpdate("spend", func(s *player.State) error {
		s.Money = 0
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 50.0, got.Money)
	assert.Equal(t, 50.0, store.Snapshot().Money)
	assert.Empty(t, rec.Replay())
}

func TestXPNeverDecreases(t *testing.T) {
	store, _ := newTestStore(t)
	store.Update("gain", func(s *player.State) { s.XP = 40 })
	got := store.Update("oops", func(s *player.State) { s.XP = 10 })
	assert.Equal(t, int64(40), got.XP)
}

func TestReplaceBypassesMonotonicXP(t *testing.T) {
	store, rec := newTestStore(t)
	store.Update("gain", func(s *player.State) { s.XP = 40 })

	store.Replace(player.New(0, 100), "reset")

	assert.Zero(t, store.Snapshot().XP)
	assert.Len(t, rec.Replay(), 2)
}

func TestHandlersMayReadStoreDuringPublish(t *testing.T) {
	bus := events.NewBus(nil)
	store := NewStore(player.New(0, 100), limits, bus)
	var seen float64
	bus.Subscribe(events.EventTypeStateChanged, func(events.Event) error {
		seen = store.Snapshot().Money
		return nil
	})

	store.Update("earn", func(s *player.State) { s.Earn(7) })

	assert.Equal(t, 7.0, seen)
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	store := NewStore(player.New(0, 100), limits, events.NewBus(nil))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update("click", func(s *player.State) { s.Clicks++ })
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), store.Snapshot().Clicks)
}
