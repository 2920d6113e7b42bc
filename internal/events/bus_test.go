package events

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

type countingRecorder struct {
	emits, failures int
}

func (c *countingRecorder) RecordEmit()           { c.emits++ }
func (c *countingRecorder) RecordHandlerFailure() { c.failures++ }

func TestEmitDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus(nil)
	var order []string

	bus.Subscribe(EventTypeXPGained, func(Event) error { order = append(order, "h1"); return nil })
	bus.Subscribe(EventTypeXPGained, func(Event) error { order = append(order, "h2"); return nil })
	bus.Subscribe(EventTypeXPGained, func(Event) error { order = append(order, "h3"); return nil })

	bus.Publish(XPGainedPayload{Amount: 10})

	assert.Equal(t, []string{"h1", "h2", "h3"}, order)
}

func TestEmitWithoutSubscribersIsNoOp(t *testing.T) {
	rec := &countingRecorder{}
	bus := NewBus(nil, WithMetrics(rec))

	assert.NotPanics(t, func() { bus.Emit(EventTypeTick, TickPayload{}) })
	assert.Equal(t, 1, rec.emits)
	assert.Equal(t, 0, rec.failures)
}

func TestHandlerReceivesPayload(t *testing.T) {
	bus := NewBus(nil)
	var got Event
	bus.Subscribe(EventTypeLevelUp, func(ev Event) error { got = ev; return nil })

	bus.Publish(LevelUpPayload{From: 1, To: 2})

	assert.Equal(t, EventTypeLevelUp, got.Type)
	assert.Equal(t, LevelUpPayload{From: 1, To: 2}, got.Payload)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
}

func TestFailingHandlerDoesNotStopDelivery(t *testing.T) {
	var buf bytes.Buffer
	rec := &countingRecorder{}
	bus := NewBus(logger.New(&buf, slog.LevelDebug), WithMetrics(rec))

	var calledA, calledC int
	bus.Subscribe(EventTypeCodeClicked, func(Event) error { calledA++; return nil })
	bus.Subscribe(EventTypeCodeClicked, func(Event) error { return errors.New("boom") })
	bus.Subscribe(EventTypeCodeClicked, func(Event) error { panic("kaboom") })
	bus.Subscribe(EventTypeCodeClicked, func(Event) error { calledC++; return nil })

	bus.Publish(CodeClickedPayload{Clicks: 1})

	assert.Equal(t, 1, calledA)
	assert.Equal(t, 1, calledC)
	assert.Equal(t, 2, rec.failures)
	assert.Contains(t, buf.String(), "event handler failed")
	assert.Contains(t, buf.String(), "event handler panicked")
}

func TestSubscribeOnceFiresExactlyOnce(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	tok := bus.SubscribeOnce(EventTypeGameSaved, func(Event) error { calls++; return nil })

	bus.Publish(GameSavedPayload{OK: true})
	bus.Publish(GameSavedPayload{OK: true})

	assert.Equal(t, 1, calls)
	assert.False(t, tok.Active())
	assert.Equal(t, 0, bus.HandlerCount(EventTypeGameSaved))
}

func TestSubscribeOnceSurvivesReentrantEmit(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	bus.SubscribeOnce(EventTypeTick, func(Event) error {
		calls++
		bus.Publish(TickPayload{TickNumber: 2})
		return nil
	})

	bus.Publish(TickPayload{TickNumber: 1})

	assert.Equal(t, 1, calls)
}

func TestUnsubscribeDuringEmitIsSafe(t *testing.T) {
	bus := NewBus(nil)
	var order []string
	var tokB Token

	bus.Subscribe(EventTypeTick, func(Event) error {
		order = append(order, "a")
		tokB.Unsubscribe()
		return nil
	})
	tokB = bus.Subscribe(EventTypeTick, func(Event) error { order = append(order, "b"); return nil })
	bus.Subscribe(EventTypeTick, func(Event) error { order = append(order, "c"); return nil })

	bus.Publish(TickPayload{})
	bus.Publish(TickPayload{})

	assert.Equal(t, []string{"a", "c", "a", "c"}, order)
}

func TestSelfUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	var tok Token
	tok = bus.Subscribe(EventTypeTick, func(Event) error {
		calls++
		tok.Unsubscribe()
		return nil
	})

	bus.Publish(TickPayload{})
	bus.Publish(TickPayload{})
	tok.Unsubscribe()

	assert.Equal(t, 1, calls)
}

func TestSubscribeDuringEmitWaitsForNextEmission(t *testing.T) {
	bus := NewBus(nil)
	late := 0
	added := false
	bus.Subscribe(EventTypeTick, func(Event) error {
		if !added {
			added = true
			bus.Subscribe(EventTypeTick, func(Event) error { late++; return nil })
		}
		return nil
	})

	bus.Publish(TickPayload{})
	assert.Equal(t, 0, late)

	bus.Publish(TickPayload{})
	assert.Equal(t, 1, late)
}

func TestClear(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	h := func(Event) error { calls++; return nil }
	bus.Subscribe(EventTypeTick, h)
	bus.Subscribe(EventTypeLevelUp, h)

	bus.Clear(EventTypeTick)
	bus.Publish(TickPayload{})
	bus.Publish(LevelUpPayload{})
	assert.Equal(t, 1, calls)

	bus.ClearAll()
	bus.Publish(LevelUpPayload{})
	assert.Equal(t, 1, calls)
}

func TestTypedSubscription(t *testing.T) {
	bus := NewBus(nil)
	var got LessonCompletedPayload
	On(bus, func(p LessonCompletedPayload) error { got = p; return nil })

	bus.Publish(LessonCompletedPayload{LessonID: "go-basics", Total: 1})
	assert.Equal(t, "go-basics", got.LessonID)

	onceCalls := 0
	Once(bus, func(LevelUpPayload) error { onceCalls++; return nil })
	bus.Publish(LevelUpPayload{From: 1, To: 2})
	bus.Publish(LevelUpPayload{From: 2, To: 3})
	assert.Equal(t, 1, onceCalls)
}

func TestTypedSubscriptionRejectsMismatchedPayload(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logger.New(&buf, slog.LevelDebug))
	called := false
	On(bus, func(TickPayload) error { called = true; return nil })

	bus.Emit(EventTypeTick, LevelUpPayload{})

	assert.False(t, called)
	assert.True(t, strings.Contains(buf.String(), "want events.TickPayload"), buf.String())
}

func TestConcurrentSubscribeAndEmit(t *testing.T) {
	bus := NewBus(nil)
	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := bus.Subscribe(EventTypeTick, func(Event) error {
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			})
			bus.Publish(TickPayload{})
			tok.Unsubscribe()
		}()
	}
	wg.Wait()

	require.Equal(t, 0, bus.HandlerCount(EventTypeTick))
	assert.GreaterOrEqual(t, count, 8)
}

func TestRecorderKeepsMostRecent(t *testing.T) {
	bus := NewBus(nil)
	rec := NewRecorder(2)
	rec.Attach(bus)

	bus.Publish(TickPayload{TickNumber: 1})
	bus.Publish(LevelUpPayload{From: 1, To: 2})
	bus.Publish(TickPayload{TickNumber: 2})

	assert.Equal(t, []EventType{EventTypeLevelUp, EventTypeTick}, rec.Types())
	assert.Len(t, rec.ByType(EventTypeTick), 1)

	rec.Detach()
	bus.Publish(TickPayload{TickNumber: 3})
	assert.Len(t, rec.Replay(), 2)
}
