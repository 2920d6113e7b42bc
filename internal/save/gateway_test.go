package save

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/developer"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/project"
	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/storage"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newGateway(slot storage.Slot, opts ...Option) *Gateway {
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithValidator(func(s player.State) error { return s.Validate(100, 100) }),
	}, opts...)
	return NewGateway(slot, "main", nil, opts...)
}

// sampleState sets every field of player.State so the round trip covers all of them.
func sampleState() player.State {
	s := player.New(50, 100)
	s.Money = 123.5
	s.TotalEarned = 480.25
	s.Energy = 62.5
	s.Stress = 17.75
	s.XP = 240
	s.Level = 3
	s.Clicks = 12
	s.LessonsCompleted = 4
	s.ChallengesCompleted = 2
	s.ProjectsCompleted = 1
	s.PlaySeconds = 3600.5
	s.Unlock("first-commit")
	s.Skills["go"] = 2
	s.Technologies["git"] = true
	s.Developers = append(s.Developers, developer.Developer{
		ID:           "dev-1",
		Role:         "intern",
		Name:         "Intern #1",
		Productivity: 0.5,
		Speed:        1,
		HiredAt:      1_699_999_000_000,
	})
	s.ActiveProject = &project.Active{ID: "todo-api", Progress: 12.5, Effort: 60, StartedAt: 1_699_999_500_000}
	return s
}

type failingSlot struct {
	storage.Slot
	failSet bool
	panics  bool
}

func (f *failingSlot) Set(ctx context.Context, key string, payload []byte) error {
	if f.panics {
		panic("disk on fire")
	}
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.Slot.Set(ctx, key, payload)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(storage.NewMemorySlotStore())

	require.True(t, gw.Save(ctx, sampleState()))

	got, ok := gw.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, sampleState(), got)

	rec, ok := gw.LoadRecord(ctx)
	require.True(t, ok)
	assert.Equal(t, CurrentVersion, rec.Version)
	assert.Equal(t, fixedNow.UnixMilli(), rec.Timestamp)
}

func TestLoadTreatsNilCollectionsAsEmpty(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(storage.NewMemorySlotStore())

	bare := player.State{Energy: 100, Level: 1}
	require.True(t, gw.Save(ctx, bare))

	got, ok := gw.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, map[string]bool{}, got.Achievements)
	assert.Equal(t, map[string]int{}, got.Skills)
	assert.Equal(t, map[string]bool{}, got.Technologies)

	got.Achievements, got.Skills, got.Technologies = nil, nil, nil
	assert.Equal(t, bare, got, "apart from empty collections the state is unchanged")
}

func TestLoadMissingSlot(t *testing.T) {
	_, ok := newGateway(storage.NewMemorySlotStore()).Load(context.Background())
	assert.False(t, ok)
}

func TestLoadCorruptPayload(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlotStore()
	require.NoError(t, slot.Set(ctx, "main", []byte("{not json")))

	var buf bytes.Buffer
	gw := NewGateway(slot, "main", logger.New(&buf, slog.LevelDebug))
	_, ok := gw.Load(ctx)

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "load failed")
}

func TestSaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(&failingSlot{Slot: storage.NewMemorySlotStore(), failSet: true})
	assert.False(t, gw.Save(ctx, sampleState()))

	gw = newGateway(&failingSlot{Slot: storage.NewMemorySlotStore(), panics: true})
	assert.NotPanics(t, func() { assert.False(t, gw.Save(ctx, sampleState())) })
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newGateway(storage.NewMemorySlotStore())
	require.True(t, src.Save(ctx, sampleState()))

	exported, ok := src.ExportPortable(ctx)
	require.True(t, ok)

	raw, err := base64.StdEncoding.DecodeString(exported)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version":"1"`)

	dst := newGateway(storage.NewMemorySlotStore())
	require.True(t, dst.ImportPortable(ctx, exported+"\n"))

	got, ok := dst.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, sampleState(), got)
}

func TestExportWithoutSave(t *testing.T) {
	_, ok := newGateway(storage.NewMemorySlotStore()).ExportPortable(context.Background())
	assert.False(t, ok)
}

func TestImportRejectsBadInputAndKeepsSlot(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlotStore()
	gw := newGateway(slot)
	require.True(t, gw.Save(ctx, sampleState()))
	before, _ := slot.Get(ctx, "main")

	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	bad := map[string]string{
		"not base64":        "%%%",
		"not json":          encode("hello"),
		"missing version":   encode(`{"timestamp":1,"state":{"level":1}}`),
		"missing state":     encode(`{"version":"1","timestamp":1}`),
		"invalid state":     encode(`{"version":"1","timestamp":1,"state":{"level":1,"energy":500}}`),
		"missing timestamp": encode(`{"version":"1","state":{"level":1}}`),
	}
	for name, input := range bad {
		t.Run(name, func(t *testing.T) {
			assert.False(t, gw.ImportPortable(ctx, input))
			after, err := slot.Get(ctx, "main")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestMigrationChain(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlotStore()

	// Version 0 stored money under "cash".
	legacy := `{"version":"0","timestamp":5,"state":{"cash":42,"level":1}}`
	require.NoError(t, slot.Set(ctx, "main", []byte(legacy)))

	gw := newGateway(slot, WithMigration("0", "1", func(raw json.RawMessage) (json.RawMessage, error) {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		m["money"] = m["cash"]
		delete(m, "cash")
		return json.Marshal(m)
	}))

	rec, ok := gw.LoadRecord(ctx)
	require.True(t, ok)
	assert.Equal(t, CurrentVersion, rec.Version)
	assert.Equal(t, 42.0, rec.State.Money)
	assert.NotNil(t, rec.State.Skills)
}

func TestUnknownVersionLoadsWithWarning(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlotStore()
	require.NoError(t, slot.Set(ctx, "main", []byte(`{"version":"7","timestamp":5,"state":{"money":3,"level":2}}`)))

	var buf bytes.Buffer
	gw := NewGateway(slot, "main", logger.New(&buf, slog.LevelDebug))

	st, ok := gw.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, 3.0, st.Money)
	assert.Contains(t, buf.String(), "unknown save version")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(storage.NewMemorySlotStore())
	require.True(t, gw.Save(ctx, sampleState()))
	require.True(t, gw.Delete(ctx))
	_, ok := gw.Load(ctx)
	assert.False(t, ok)
}

type countingSaver struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSaver) Save(context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return true
}

func (c *countingSaver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestAutosaverSavesPeriodicallyAndOnShutdown(t *testing.T) {
	saver := &countingSaver{}
	results := make(chan bool, 100)
	a := NewAutosaver(saver, 10*time.Millisecond, nil, func(ok bool) { results <- ok })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return saver.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	final := saver.count()
	assert.GreaterOrEqual(t, final, 3)
	assert.True(t, <-results)
}

func TestAutosaverZeroIntervalOnlySavesOnShutdown(t *testing.T) {
	saver := &countingSaver{}
	a := NewAutosaver(saver, 0, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.Run(ctx)

	assert.Equal(t, 1, saver.count())
}
