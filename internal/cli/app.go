package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/MRamiBalles/DevLearnAcademy/internal/catalog"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/engine"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/cache"
	"github.com/MRamiBalles/DevLearnAcademy/internal/infra/storage"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/metrics"
	"github.com/MRamiBalles/DevLearnAcademy/internal/save"
)

// App wires every component of a running game. It only handles dependency
// injection; no game logic belongs here.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Collector
	DB       *sqlx.DB
	Slots    *storage.SQLiteSlotStore
	Cache    *cache.SlotCache
	Gateway  *save.Gateway
	Bus      *events.Bus
	Recorder *events.Recorder
	Engine   *engine.Engine
}

// OpenApp builds the game from configuration. Logs go to logOut.
func OpenApp(cfg *config.Config, logOut io.Writer) (*App, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	log := logger.New(logOut, logger.ParseLevel(cfg.LogLevel))

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open save database: %w", err)
	}
	slots := storage.NewSQLiteSlotStore(db)
	cached := cache.NewSlotCache(slots, cache.DefaultExpiration)

	m := metrics.New()
	bus := events.NewBus(log, events.WithMetrics(m))
	rec := events.NewRecorder(512)
	rec.Attach(bus)

	rules := cfg.Rules
	gw := save.NewGateway(cached, cfg.SaveSlot, log, save.WithValidator(func(s player.State) error {
		return s.Validate(rules.MaxEnergy, rules.MaxStress)
	}))

	eng := engine.NewEngine(bus, cat, cfg.Rules, log,
		engine.WithGateway(gw),
		engine.WithMetrics(m),
		engine.WithTickInterval(cfg.TickInterval),
		engine.WithMaxCatchUp(cfg.MaxOfflineCatchUp),
	)

	return &App{
		Config:   cfg,
		Logger:   log,
		Metrics:  m,
		DB:       db,
		Slots:    slots,
		Cache:    cached,
		Gateway:  gw,
		Bus:      bus,
		Recorder: rec,
		Engine:   eng,
	}, nil
}

// Close stops the engine and releases the database.
func (a *App) Close() error {
	a.Engine.Close()
	a.Recorder.Detach()
	return a.DB.Close()
}
