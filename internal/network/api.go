package network

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/player"
	"github.com/MRamiBalles/DevLearnAcademy/internal/engine"
	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/metrics"
)

// API exposes the engine over HTTP.
type API struct {
	engine   *engine.Engine
	hub      *Hub
	metrics  *metrics.Collector
	recorder *events.Recorder
	logger   *logger.Logger
}

// NewAPI creates the HTTP handlers. rec may be nil, which disables /api/events.
func NewAPI(eng *engine.Engine, hub *Hub, m *metrics.Collector, rec *events.Recorder, log *logger.Logger) *API {
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.New()
	}
	return &API{engine: eng, hub: hub, metrics: m, recorder: rec, logger: log.With("component", "api")}
}

// StateResponse is the body of GET /api/state.
type StateResponse struct {
	State        player.State `json:"state"`
	MoneyPerSec  float64      `json:"money_per_sec"`
	EffortPerSec float64      `json:"effort_per_sec"`
	Running      bool         `json:"running"`
}

// ImportRequest is the body of POST /api/import.
type ImportRequest struct {
	Data string `json:"data"`
}

// RegisterRoutes sets up the API routes.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", a.HandleState)
	mux.HandleFunc("POST /api/action", a.HandleAction)
	mux.HandleFunc("POST /api/save", a.HandleSave)
	mux.HandleFunc("GET /api/export", a.HandleExport)
	mux.HandleFunc("POST /api/import", a.HandleImport)
	mux.HandleFunc("GET /api/events", a.HandleEvents)
	mux.HandleFunc("GET /metrics", metrics.Handler(a.metrics))
	mux.HandleFunc("GET /metrics/prometheus", metrics.PrometheusHandler(a.metrics))
	if a.hub != nil {
		mux.HandleFunc("GET /ws", a.hub.ServeWS)
	}
}

// Handler returns a mux with every route registered.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return mux
}

// HandleState returns the current player state and production rates.
// GET /api/state
func (a *API) HandleState(w http.ResponseWriter, r *http.Request) {
	a.jsonSuccess(w, a.state())
}

func (a *API) state() StateResponse {
	money, effort := a.engine.Rates()
	return StateResponse{
		State:        a.engine.Snapshot(),
		MoneyPerSec:  money,
		EffortPerSec: effort,
		Running:      a.engine.Running(),
	}
}

// HandleAction applies one player action.
// POST /api/action
func (a *API) HandleAction(w http.ResponseWriter, r *http.Request) {
	var action PlayerAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		a.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := Dispatch(a.engine, action); err != nil {
		a.actionError(w, err)
		return
	}
	a.jsonSuccess(w, a.state())
}

func (a *API) actionError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnknownAction) {
		a.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	code := engine.CodeOf(err)
	status := http.StatusUnprocessableEntity
	if code == engine.CodeUnknownItem {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "code": string(code)})
}

// HandleSave persists the game now.
// POST /api/save
func (a *API) HandleSave(w http.ResponseWriter, r *http.Request) {
	if !a.engine.Save(r.Context()) {
		a.jsonError(w, "save failed", http.StatusInternalServerError)
		return
	}
	a.jsonSuccess(w, map[string]bool{"ok": true})
}

// HandleExport returns the stored save as portable text.
// GET /api/export
func (a *API) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, ok := a.engine.Export(r.Context())
	if !ok {
		a.jsonError(w, "no save to export", http.StatusNotFound)
		return
	}
	a.jsonSuccess(w, ImportRequest{Data: data})
}

// HandleImport replaces the save with exported text and loads it.
// POST /api/import
func (a *API) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	recap, ok := a.engine.Import(r.Context(), req.Data)
	if !ok {
		a.jsonError(w, "save data rejected", http.StatusBadRequest)
		return
	}
	a.logger.Info("save imported", "offline", recap.Elapsed)
	a.jsonSuccess(w, map[string]interface{}{
		"state": a.engine.Snapshot(),
		"recap": recap,
	})
}

// HandleEvents returns recently recorded events, optionally filtered by type.
// GET /api/events?type=LEVEL_UP
func (a *API) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if a.recorder == nil {
		a.jsonError(w, "event history disabled", http.StatusNotFound)
		return
	}
	var evs []events.Event
	if t := r.URL.Query().Get("type"); t != "" {
		evs = a.recorder.ByType(events.EventType(t))
	} else {
		evs = a.recorder.Replay()
	}
	out := make([]Message, 0, len(evs))
	for _, ev := range evs {
		out = append(out, toMessage(ev))
	}
	a.jsonSuccess(w, map[string]interface{}{
		"total":  len(out),
		"events": out,
	})
}

// jsonError sends an error response.
func (a *API) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (a *API) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
