package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/storage"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/metrics"
	"github.com/MRamiBalles/DevLearnAcademy/internal/save"
)

func newSessionRig(t *testing.T, slot storage.Slot, opts ...Option) *testRig {
	t.Helper()
	clock := NewManualClock(epoch)
	gw := save.NewGateway(slot, "main", nil, save.WithClock(clock.Now))
	rig := newRig(t, append([]Option{WithGateway(gw), WithClock(clock)}, opts...)...)
	rig.clock = clock
	return rig
}

func TestSaveAndLoadWithOfflineCatchUp(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlotStore()
	m := metrics.New()

	first := newSessionRig(t, slot, WithMetrics(m))
	require.NoError(t, first.engine.Click())
	require.True(t, first.engine.Save(ctx))

	saved := first.recorder.ByType(events.EventTypeGameSaved)
	require.Len(t, saved, 1)
	assert.Equal(t, events.GameSavedPayload{Slot: "main", Timestamp: epoch.UnixMilli(), OK: true}, saved[0].Payload)

	second := newSessionRig(t, slot, WithMetrics(m))
	second.clock.Advance(10 * time.Second)

	recap, found := second.engine.Load(ctx)
	require.True(t, found)
	assert.Equal(t, 10*time.Second, recap.Elapsed)
	assert.Equal(t, 10*time.Second, recap.Simulated)

	s := second.engine.Snapshot()
	assert.Equal(t, int64(1), s.Clicks)
	assert.InDelta(t, 99.0, s.Energy, 1e-9)
	assert.True(t, s.HasAchievement("first-click"))

	loaded := second.recorder.ByType(events.EventTypeGameLoaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, 10.0, loaded[0].Payload.(events.GameLoadedPayload).OfflineSeconds)
	assert.Empty(t, second.recorder.ByType(events.EventTypeAchievementUnlocked), "already unlocked before saving")

	snap := m.Snapshot()["saves"].(map[string]interface{})
	assert.Equal(t, int64(1), snap["ok"])
	assert.Equal(t, int64(1), snap["loads"])
}

func TestLoadWithoutSaveKeepsState(t *testing.T) {
	rig := newSessionRig(t, storage.NewMemorySlotStore())
	before := rig.engine.Snapshot()

	_, found := rig.engine.Load(context.Background())

	assert.False(t, found)
	assert.Equal(t, before, rig.engine.Snapshot())
	loaded := rig.recorder.ByType(events.EventTypeGameLoaded)
	require.Len(t, loaded, 1)
	assert.False(t, loaded[0].Payload.(events.GameLoadedPayload).Found)
}

func TestSaveWithoutGatewayFails(t *testing.T) {
	rig := newRig(t)

	assert.False(t, rig.engine.Save(context.Background()))
	saved := rig.recorder.ByType(events.EventTypeGameSaved)
	require.Len(t, saved, 1)
	assert.False(t, saved[0].Payload.(events.GameSavedPayload).OK)
}

func TestResetStartsOverAndDeletesSave(t *testing.T) {
	ctx := context.Background()
	rig := newSessionRig(t, storage.NewMemorySlotStore())
	require.NoError(t, rig.engine.Click())
	require.True(t, rig.engine.Save(ctx))

	rig.engine.Reset(ctx)

	assert.Equal(t, player.New(50, 100), rig.engine.Snapshot())
	_, ok := rig.engine.Export(ctx)
	assert.False(t, ok)
	assert.Len(t, rig.recorder.ByType(events.EventTypeGameReset), 1)
}

func TestExportImportAcrossEngines(t *testing.T) {
	ctx := context.Background()
	src := newSessionRig(t, storage.NewMemorySlotStore())
	require.NoError(t, src.engine.CompleteLesson("intro"))
	require.True(t, src.engine.Save(ctx))
	exported, ok := src.engine.Export(ctx)
	require.True(t, ok)

	dst := newSessionRig(t, storage.NewMemorySlotStore())
	_, ok = dst.engine.Import(ctx, "garbage")
	assert.False(t, ok)
	assert.Zero(t, dst.engine.Snapshot().LessonsCompleted)

	_, ok = dst.engine.Import(ctx, exported)
	require.True(t, ok)
	assert.Equal(t, int64(1), dst.engine.Snapshot().LessonsCompleted)
}

func TestCatchUpIsCapped(t *testing.T) {
	rig := newRig(t, WithMaxCatchUp(time.Hour))
	require.NoError(t, rig.engine.HireDeveloper("intern"))

	recap := rig.engine.CatchUp(3 * time.Hour)

	assert.Equal(t, 3*time.Hour, recap.Elapsed)
	assert.Equal(t, time.Hour, recap.Simulated)
	assert.Equal(t, 0.0, rig.engine.Snapshot().Energy)
	assert.Greater(t, recap.MoneyEarned, 0.0)
	require.NotEmpty(t, recap.Lines)
	assert.Equal(t, "You were away for 3 hours.", recap.Lines[0].Summary)
	assert.Equal(t, "Only the first 1h0m0s counted toward progress.", recap.Lines[1].Summary)
}

func TestCatchUpIgnoresNonPositiveElapsed(t *testing.T) {
	rig := newRig(t)

	recap := rig.engine.CatchUp(-time.Minute)

	assert.Zero(t, recap.Simulated)
	assert.Empty(t, rig.recorder.ByType(events.EventTypeTick))
}
