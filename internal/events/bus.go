// Package events provides the synchronous publish/subscribe bus that decouples
// the simulation systems from each other and from the outer surfaces.
package events

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

// Event is one delivery to subscribers.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
}

// Handler reacts to an event. A returned error is logged and does not stop delivery.
type Handler func(Event) error

// FailureRecorder receives bus activity counts. *metrics.Collector satisfies it.
type FailureRecorder interface {
	RecordEmit()
	RecordHandlerFailure()
}

type subscription struct {
	id        uint64
	eventType EventType
	handler   Handler
	once      bool
	removed   atomic.Bool
}

// Token identifies a subscription and removes it.
type Token struct {
	bus *Bus
	sub *subscription
}

// Unsubscribe removes the subscription. Safe to call more than once and from inside a handler.
func (t Token) Unsubscribe() {
	if t.bus == nil || t.sub == nil {
		return
	}
	t.bus.unsubscribe(t.sub)
}

// Active reports whether the subscription will still receive events.
func (t Token) Active() bool {
	return t.sub != nil && !t.sub.removed.Load()
}

// Bus delivers events synchronously, in registration order, to the handlers of one type.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[EventType][]*subscription

	log     *logger.Logger
	metrics FailureRecorder
	now     func() time.Time
}

// Option configures a Bus.
type Option func(*Bus)

// WithMetrics counts emissions and handler failures.
func WithMetrics(m FailureRecorder) Option {
	return func(b *Bus) { b.metrics = m }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// NewBus creates an empty bus.
func NewBus(log *logger.Logger, opts ...Option) *Bus {
	if log == nil {
		log = logger.Discard()
	}
	b := &Bus{
		subs: make(map[EventType][]*subscription),
		log:  log,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for eventType.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Token {
	return b.add(eventType, handler, false)
}

// SubscribeOnce registers handler for the next emission of eventType only.
// The subscription is removed before the handler runs.
func (b *Bus) SubscribeOnce(eventType EventType, handler Handler) Token {
	return b.add(eventType, handler, true)
}

func (b *Bus) add(eventType EventType, handler Handler, once bool) Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, eventType: eventType, handler: handler, once: once}
	b.subs[eventType] = append(b.subs[eventType], sub)
	return Token{bus: b, sub: sub}
}

func (b *Bus) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detachLocked(sub)
}

// detachLocked builds a new slice so snapshots held by in-flight emissions stay intact.
func (b *Bus) detachLocked(sub *subscription) {
	sub.removed.Store(true)
	current := b.subs[sub.eventType]
	next := make([]*subscription, 0, len(current))
	for _, s := range current {
		if s != sub {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		delete(b.subs, sub.eventType)
		return
	}
	b.subs[sub.eventType] = next
}

// Emit delivers payload to every handler registered for eventType at the moment of the call.
// Handlers added during delivery wait for the next emission. Handlers removed during delivery
// are skipped if they have not run yet.
func (b *Bus) Emit(eventType EventType, payload Payload) {
	b.mu.Lock()
	snapshot := b.subs[eventType]
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.RecordEmit()
	}
	if len(snapshot) == 0 {
		return
	}

	ev := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: b.now(),
		Payload:   payload,
	}

	for _, sub := range snapshot {
		if sub.once {
			if !sub.removed.CompareAndSwap(false, true) {
				continue
			}
			b.unsubscribe(sub)
		} else if sub.removed.Load() {
			continue
		}
		b.invoke(sub, ev)
	}
}

// Publish emits a typed payload under its own event type.
func (b *Bus) Publish(payload Payload) {
	b.Emit(payload.EventType(), payload)
}

func (b *Bus) invoke(sub *subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.fail()
			b.log.Error("event handler panicked",
				"event", ev.Type, "subscription", sub.id, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if err := sub.handler(ev); err != nil {
		b.fail()
		b.log.Error("event handler failed", "event", ev.Type, "subscription", sub.id, "error", err)
	}
}

func (b *Bus) fail() {
	if b.metrics != nil {
		b.metrics.RecordHandlerFailure()
	}
}

// Clear removes every handler for eventType.
func (b *Bus) Clear(eventType EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs[eventType] {
		s.removed.Store(true)
	}
	delete(b.subs, eventType)
}

// ClearAll removes every handler on the bus.
func (b *Bus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, list := range b.subs {
		for _, s := range list {
			s.removed.Store(true)
		}
	}
	b.subs = make(map[EventType][]*subscription)
}

// HandlerCount returns the number of live handlers for eventType.
func (b *Bus) HandlerCount(eventType EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[eventType])
}

// On subscribes a handler typed by its payload. The event type comes from P.
func On[P Payload](b *Bus, fn func(P) error) Token {
	var zero P
	eventType := zero.EventType()
	return b.Subscribe(eventType, func(ev Event) error {
		p, ok := ev.Payload.(P)
		if !ok {
			return fmt.Errorf("%s: payload has type %T, want %T", eventType, ev.Payload, zero)
		}
		return fn(p)
	})
}

// Once is the typed form of SubscribeOnce.
func Once[P Payload](b *Bus, fn func(P) error) Token {
	var zero P
	eventType := zero.EventType()
	return b.SubscribeOnce(eventType, func(ev Event) error {
		p, ok := ev.Payload.(P)
		if !ok {
			return fmt.Errorf("%s: payload has type %T, want %T", eventType, ev.Payload, zero)
		}
		return fn(p)
	})
}
