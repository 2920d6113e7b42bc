// Package state owns the single authoritative player state.
// All mutation goes through Store so every change is serialized and announced on the bus.
package state

import (
	"sync"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
)

// Limits bound the clamped resources.
type Limits struct {
	MaxEnergy float64
	MaxStress float64
}

// Store serializes access to the player state.
type Store struct {
	mu     sync.RWMutex
	state  player.State
	limits Limits
	bus    *events.Bus
}

// NewStore creates a store seeded with initial.
func NewStore(initial player.State, limits Limits, bus *events.Bus) *Store {
	initial.Clamp(limits.MaxEnergy, limits.MaxStress)
	return &Store{
		state:  initial.Clone(),
		limits: limits,
		bus:    bus,
	}
}

// Limits returns the resource bounds the store enforces.
func (s *Store) Limits() Limits {
	return s.limits
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() player.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Update applies fn to the state and publishes STATE_CHANGED with cause.
// It returns a copy of the committed state.
func (s *Store) Update(cause string, fn func(*player.State)) player.State {
	next, _ := s.TryUpdate(cause, func(st *player.State) error {
		fn(st)
		return nil
	})
	return next
}

// TryUpdate applies fn to a working copy. If fn returns an error nothing is committed
// and no event is published. Energy and stress are clamped, and XP never decreases.
func (s *Store) TryUpdate(cause string, fn func(*player.State) error) (player.State, error) {
	s.mu.Lock()
	work := s.state.Clone()
	if err := fn(&work); err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	work.Clamp(s.limits.MaxEnergy, s.limits.MaxStress)
	if work.XP < s.state.XP {
		work.XP = s.state.XP
	}
	s.state = work
	committed := work.Clone()
	s.mu.Unlock()

	s.publish(cause)
	return committed, nil
}

// Replace swaps in a whole new state, as after a load or import.
func (s *Store) Replace(next player.State, cause string) player.State {
	next.Clamp(s.limits.MaxEnergy, s.limits.MaxStress)
	s.mu.Lock()
	s.state = next.Clone()
	s.mu.Unlock()

	s.publish(cause)
	return next.Clone()
}

func (s *Store) publish(cause string) {
	if s.bus != nil {
		s.bus.Publish(events.StateChangedPayload{Cause: cause})
	}
}
