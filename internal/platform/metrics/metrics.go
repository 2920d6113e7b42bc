// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Event bus metrics
	EventsEmitted   int64
	HandlerFailures int64

	// Persistence metrics
	SavesOK      int64
	SavesFailed  int64
	Loads        int64
	LoadsMissing int64
	LastSaveTime time.Time

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// New returns a collector whose uptime starts now.
func New() *Collector {
	return &Collector{StartTime: time.Now()}
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordEmit records one bus emission.
func (c *Collector) RecordEmit() {
	atomic.AddInt64(&c.EventsEmitted, 1)
}

// RecordHandlerFailure records a subscriber that errored or panicked.
func (c *Collector) RecordHandlerFailure() {
	atomic.AddInt64(&c.HandlerFailures, 1)
}

// RecordSave records the outcome of a save attempt.
func (c *Collector) RecordSave(ok bool) {
	if !ok {
		atomic.AddInt64(&c.SavesFailed, 1)
		return
	}
	atomic.AddInt64(&c.SavesOK, 1)

	c.mu.Lock()
	c.LastSaveTime = time.Now()
	c.mu.Unlock()
}

// RecordLoad records a load attempt and whether a save was found.
func (c *Collector) RecordLoad(found bool) {
	atomic.AddInt64(&c.Loads, 1)
	if !found {
		atomic.AddInt64(&c.LoadsMissing, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)

	var tickAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}

	lastSave := ""
	if !c.LastSaveTime.IsZero() {
		lastSave = c.LastSaveTime.Format(time.RFC3339)
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"events": map[string]interface{}{
			"emitted":          atomic.LoadInt64(&c.EventsEmitted),
			"handler_failures": atomic.LoadInt64(&c.HandlerFailures),
		},

		"saves": map[string]interface{}{
			"ok":            atomic.LoadInt64(&c.SavesOK),
			"failed":        atomic.LoadInt64(&c.SavesFailed),
			"loads":         atomic.LoadInt64(&c.Loads),
			"loads_missing": atomic.LoadInt64(&c.LoadsMissing),
			"last_save":     lastSave,
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		fmt.Fprintf(w, "# HELP devlearn_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE devlearn_tick_count counter\n")
		fmt.Fprintf(w, "devlearn_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP devlearn_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE devlearn_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "devlearn_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP devlearn_events_emitted Total bus emissions\n")
		fmt.Fprintf(w, "# TYPE devlearn_events_emitted counter\n")
		fmt.Fprintf(w, "devlearn_events_emitted %d\n\n", atomic.LoadInt64(&c.EventsEmitted))

		fmt.Fprintf(w, "# HELP devlearn_handler_failures Total failed event handlers\n")
		fmt.Fprintf(w, "# TYPE devlearn_handler_failures counter\n")
		fmt.Fprintf(w, "devlearn_handler_failures %d\n\n", atomic.LoadInt64(&c.HandlerFailures))

		fmt.Fprintf(w, "# HELP devlearn_saves_total Save attempts by outcome\n")
		fmt.Fprintf(w, "# TYPE devlearn_saves_total counter\n")
		fmt.Fprintf(w, "devlearn_saves_total{outcome=\"ok\"} %d\n", atomic.LoadInt64(&c.SavesOK))
		fmt.Fprintf(w, "devlearn_saves_total{outcome=\"failed\"} %d\n\n", atomic.LoadInt64(&c.SavesFailed))

		fmt.Fprintf(w, "# HELP devlearn_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE devlearn_ws_connections gauge\n")
		fmt.Fprintf(w, "devlearn_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP devlearn_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE devlearn_ws_messages_total counter\n")
		fmt.Fprintf(w, "devlearn_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "devlearn_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
