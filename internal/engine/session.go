package engine

import (
	"context"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
)

// Save persists the current state and publishes GAME_SAVED with the outcome.
// Without a gateway it reports false.
func (e *Engine) Save(ctx context.Context) bool {
	at := e.clock.Now().UnixMilli()
	ok := e.gateway != nil && e.gateway.Save(ctx, e.store.Snapshot())
	if e.metrics != nil {
		e.metrics.RecordSave(ok)
	}
	e.bus.Publish(events.GameSavedPayload{Slot: e.slotName(), Timestamp: at, OK: ok})
	return ok
}

// Load restores the saved state, simulates the time spent offline and publishes GAME_LOADED.
// When no usable save exists the current state is kept and found is false.
func (e *Engine) Load(ctx context.Context) (recap Recap, found bool) {
	if e.gateway != nil {
		if rec, ok := e.gateway.LoadRecord(ctx); ok {
			found = true
			e.store.Replace(rec.State, "load")
			elapsed := e.clock.Now().Sub(msToTime(rec.Timestamp))
			recap = e.CatchUp(elapsed)
			e.logger.Info("game loaded", "slot", e.slotName(), "offline", recap.Elapsed)
		}
	}
	if e.metrics != nil {
		e.metrics.RecordLoad(found)
	}
	e.bus.Publish(events.GameLoadedPayload{
		Slot:           e.slotName(),
		Found:          found,
		OfflineSeconds: recap.Elapsed.Seconds(),
	})
	return recap, found
}

// Reset starts a new game and deletes the stored save.
func (e *Engine) Reset(ctx context.Context) {
	e.store.Replace(player.New(e.rules.StartingMoney, e.rules.MaxEnergy), "reset")
	if e.gateway != nil {
		e.gateway.Delete(ctx)
	}
	e.logger.Info("game reset", "slot", e.slotName())
	e.bus.Publish(events.GameResetPayload{})
}

// Import replaces the stored save with exported text and loads it.
// On rejection neither the slot nor the live state changes.
func (e *Engine) Import(ctx context.Context, exported string) (Recap, bool) {
	if e.gateway == nil || !e.gateway.ImportPortable(ctx, exported) {
		return Recap{}, false
	}
	return e.Load(ctx)
}

// Export returns the stored save as portable text.
func (e *Engine) Export(ctx context.Context) (string, bool) {
	if e.gateway == nil {
		return "", false
	}
	return e.gateway.ExportPortable(ctx)
}

func (e *Engine) slotName() string {
	if e.gateway == nil {
		return ""
	}
	return e.gateway.Key()
}
