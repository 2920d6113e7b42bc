// Package save turns player state into durable, versioned save records.
// Gateway methods never return errors: failures are logged and reported as false,
// and a failed import or load leaves the stored slot untouched.
package save

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/storage"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

// CurrentVersion is written into every new record.
const CurrentVersion = "1"

// Record is the persisted envelope.
type Record struct {
	Version   string       `json:"version"`
	Timestamp int64        `json:"timestamp"` // unix ms
	State     player.State `json:"state"`
}

type rawRecord struct {
	Version   string          `json:"version"`
	Timestamp int64           `json:"timestamp"`
	State     json.RawMessage `json:"state"`
}

// Migration rewrites the state JSON of one version into the next.
type Migration func(state json.RawMessage) (json.RawMessage, error)

type migrationStep struct {
	to string
	fn Migration
}

// Gateway reads and writes one named slot.
type Gateway struct {
	slot       storage.Slot
	key        string
	logger     *logger.Logger
	now        func() time.Time
	migrations map[string]migrationStep
	validate   func(player.State) error
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithMigration registers an upgrade from one record version to another.
func WithMigration(from, to string, fn Migration) Option {
	return func(g *Gateway) { g.migrations[from] = migrationStep{to: to, fn: fn} }
}

// WithValidator rejects states that fail fn on load and import.
func WithValidator(fn func(player.State) error) Option {
	return func(g *Gateway) { g.validate = fn }
}

// NewGateway creates a gateway for the slot named key.
func NewGateway(slot storage.Slot, key string, log *logger.Logger, opts ...Option) *Gateway {
	if log == nil {
		log = logger.Discard()
	}
	g := &Gateway{
		slot:       slot,
		key:        key,
		logger:     log.With("slot", key),
		now:        time.Now,
		migrations: make(map[string]migrationStep),
		validate:   func(player.State) error { return nil },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the slot name.
func (g *Gateway) Key() string {
	return g.key
}

// Save writes state as a new current-version record.
func (g *Gateway) Save(ctx context.Context, state player.State) (ok bool) {
	defer g.recoverTo(&ok, "save")

	data, err := json.Marshal(Record{Version: CurrentVersion, Timestamp: g.now().UnixMilli(), State: state})
	if err != nil {
		g.logger.Error("save failed", "stage", "encode", "error", err)
		return false
	}
	if err := g.slot.Set(ctx, g.key, data); err != nil {
		g.logger.Error("save failed", "stage", "write", "error", err)
		return false
	}
	g.logger.Debug("game saved", "bytes", len(data))
	return true
}

// Load returns the stored state. It reports false when nothing is stored or the record is unusable.
// Nil and empty collections are equivalent: a loaded state always has non-nil maps.
func (g *Gateway) Load(ctx context.Context) (player.State, bool) {
	rec, ok := g.LoadRecord(ctx)
	if !ok {
		return player.State{}, false
	}
	return rec.State, true
}

// LoadRecord is Load with the record envelope, for callers that need the save time.
func (g *Gateway) LoadRecord(ctx context.Context) (rec Record, ok bool) {
	defer g.recoverTo(&ok, "load")

	data, err := g.slot.Get(ctx, g.key)
	if errors.Is(err, storage.ErrNotFound) {
		g.logger.Debug("no save found")
		return Record{}, false
	}
	if err != nil {
		g.logger.Error("load failed", "stage", "read", "error", err)
		return Record{}, false
	}

	rec, err = g.decode(data)
	if err != nil {
		g.logger.Warn("load failed", "stage", "decode", "error", err)
		return Record{}, false
	}
	return rec, true
}

// ExportPortable returns the stored record as base64 text.
func (g *Gateway) ExportPortable(ctx context.Context) (s string, ok bool) {
	defer g.recoverTo(&ok, "export")

	data, err := g.slot.Get(ctx, g.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.Error("export failed", "error", err)
		}
		return "", false
	}
	return base64.StdEncoding.EncodeToString(data), true
}

// ImportPortable validates exported text and, only if it is sound, overwrites the slot.
func (g *Gateway) ImportPortable(ctx context.Context, s string) (ok bool) {
	defer g.recoverTo(&ok, "import")

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		g.logger.Warn("import rejected", "stage", "base64", "error", err)
		return false
	}
	rec, err := g.decode(data)
	if err != nil {
		g.logger.Warn("import rejected", "stage", "decode", "error", err)
		return false
	}

	canonical, err := json.Marshal(rec)
	if err != nil {
		g.logger.Error("import failed", "stage", "encode", "error", err)
		return false
	}
	if err := g.slot.Set(ctx, g.key, canonical); err != nil {
		g.logger.Error("import failed", "stage", "write", "error", err)
		return false
	}
	g.logger.Info("save imported", "version", rec.Version)
	return true
}

// Delete removes the stored save.
func (g *Gateway) Delete(ctx context.Context) (ok bool) {
	defer g.recoverTo(&ok, "delete")

	if err := g.slot.Delete(ctx, g.key); err != nil {
		g.logger.Error("delete failed", "error", err)
		return false
	}
	return true
}

// decode parses, migrates and validates a record.
func (g *Gateway) decode(data []byte) (Record, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	if raw.Version == "" {
		return Record{}, errors.New("record has no version")
	}
	if raw.Timestamp <= 0 {
		return Record{}, errors.New("record has no timestamp")
	}
	if len(raw.State) == 0 || string(raw.State) == "null" {
		return Record{}, errors.New("record has no state")
	}

	version, stateJSON, err := g.migrate(raw.Version, raw.State)
	if err != nil {
		return Record{}, err
	}

	var st player.State
	if err := json.Unmarshal(stateJSON, &st); err != nil {
		return Record{}, fmt.Errorf("parse state: %w", err)
	}
	normalize(&st)
	if err := g.validate(st); err != nil {
		return Record{}, fmt.Errorf("invalid state: %w", err)
	}
	return Record{Version: version, Timestamp: raw.Timestamp, State: st}, nil
}

// migrate walks the registered chain until the current version. A version with no
// registered step is accepted as-is with a warning.
func (g *Gateway) migrate(version string, state json.RawMessage) (string, json.RawMessage, error) {
	seen := make(map[string]bool)
	for version != CurrentVersion {
		if seen[version] {
			return "", nil, fmt.Errorf("migration cycle at version %q", version)
		}
		seen[version] = true

		step, ok := g.migrations[version]
		if !ok {
			g.logger.Warn("unknown save version, loading without migration", "version", version, "current", CurrentVersion)
			return version, state, nil
		}
		next, err := step.fn(state)
		if err != nil {
			return "", nil, fmt.Errorf("migrate %s to %s: %w", version, step.to, err)
		}
		g.logger.Info("save migrated", "from", version, "to", step.to)
		version, state = step.to, next
	}
	return version, state, nil
}

// normalize fills collections a hand-edited or older record may omit.
func normalize(s *player.State) {
	if s.Achievements == nil {
		s.Achievements = make(map[string]bool)
	}
	if s.Skills == nil {
		s.Skills = make(map[string]int)
	}
	if s.Technologies == nil {
		s.Technologies = make(map[string]bool)
	}
	if s.Level < 1 {
		s.Level = 1
	}
}

func (g *Gateway) recoverTo(ok *bool, op string) {
	if r := recover(); r != nil {
		g.logger.Error("save gateway panic", "op", op, "panic", r)
		*ok = false
	}
}
