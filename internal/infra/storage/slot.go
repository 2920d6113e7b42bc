// Package storage provides the persistence layer for save slots.
// Slots are opaque byte blobs keyed by name; the save package owns their format.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a slot has never been written or was deleted.
var ErrNotFound = errors.New("slot not found")

// SlotInfo describes a stored slot without its payload.
type SlotInfo struct {
	Slot      string    `json:"slot"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slot is a key/value store for serialized saves.
type Slot interface {
	// Get returns the payload stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes payload under key, replacing any previous value.
	Set(ctx context.Context, key string, payload []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List describes every stored slot, ordered by name.
	List(ctx context.Context) ([]SlotInfo, error)
}
