package save

import (
	"context"
	"time"

	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

// Saver persists the current game. The engine implements it.
type Saver interface {
	Save(ctx context.Context) bool
}

// Autosaver saves on a fixed interval and once more on shutdown.
type Autosaver struct {
	saver    Saver
	interval time.Duration
	logger   *logger.Logger
	onResult func(ok bool)
}

// NewAutosaver creates an autosaver. onResult, if set, sees every outcome.
func NewAutosaver(saver Saver, interval time.Duration, log *logger.Logger, onResult func(ok bool)) *Autosaver {
	if log == nil {
		log = logger.Discard()
	}
	return &Autosaver{saver: saver, interval: interval, logger: log, onResult: onResult}
}

// Run blocks until ctx is done. A zero interval disables periodic saves but keeps the final one.
func (a *Autosaver) Run(ctx context.Context) {
	if a.interval <= 0 {
		<-ctx.Done()
		a.final()
		return
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.final()
			return
		case <-ticker.C:
			a.save(ctx)
		}
	}
}

func (a *Autosaver) final() {
	// ctx is already cancelled; give the last write its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.save(ctx)
	a.logger.Info("autosaver stopped")
}

func (a *Autosaver) save(ctx context.Context) {
	ok := a.saver.Save(ctx)
	if !ok {
		a.logger.Warn("autosave failed")
	}
	if a.onResult != nil {
		a.onResult(ok)
	}
}
