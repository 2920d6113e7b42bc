package events

import "sync"

// Recorder keeps the most recent events in memory for replay to late joiners.
type Recorder struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	tokens   []Token
}

// NewRecorder creates a recorder holding at most capacity events.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Recorder{
		events:   make([]Event, 0, capacity),
		capacity: capacity,
	}
}

// Attach subscribes the recorder to the given types, or to every type when none are given.
func (r *Recorder) Attach(b *Bus, types ...EventType) {
	if len(types) == 0 {
		types = AllTypes
	}
	for _, t := range types {
		r.tokens = append(r.tokens, b.Subscribe(t, r.Append))
	}
}

// Detach removes the recorder's subscriptions.
func (r *Recorder) Detach() {
	for _, tok := range r.tokens {
		tok.Unsubscribe()
	}
	r.tokens = nil
}

// Append adds an event, evicting the oldest when full.
func (r *Recorder) Append(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == r.capacity {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
	}
	r.events = append(r.events, ev)
	return nil
}

// Replay returns a copy of the recorded history, oldest first.
func (r *Recorder) Replay() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByType returns recorded events of one type.
func (r *Recorder) ByType(t EventType) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Event
	for _, e := range r.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
