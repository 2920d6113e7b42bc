package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MRamiBalles/DevLearnAcademy/internal/events"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/metrics"
)

const (
	defaultSendBuffer     = 64
	defaultActionInterval = 20 * time.Millisecond
	broadcastBuffer       = 256
)

// MsgTypeActionRejected is sent only to the client whose action failed.
const MsgTypeActionRejected = "ACTION_REJECTED"

// Message is the envelope pushed to websocket clients.
type Message struct {
	ID        string      `json:"id,omitempty"`
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"` // unix ms
	Payload   interface{} `json:"payload"`
}

// RejectedPayload describes a refused action.
type RejectedPayload struct {
	Action string `json:"action"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

// Hub maintains the set of active clients and broadcasts bus events to them.
type Hub struct {
	game       Actor
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
	tokens     []events.Token

	sendBuffer     int
	actionInterval time.Duration
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithSendBuffer sets how many messages may queue per client before it is dropped.
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithActionInterval sets the minimum gap between two actions from one client.
func WithActionInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.actionInterval = d }
}

// NewHub initializes a new WebSocket Hub that forwards client actions to game.
func NewHub(game Actor, log *logger.Logger, m *metrics.Collector, opts ...HubOption) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.New()
	}
	h := &Hub{
		game:           game,
		broadcast:      make(chan []byte, broadcastBuffer),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		clients:        make(map[*Client]bool),
		logger:         log.With("component", "hub"),
		metrics:        m,
		sendBuffer:     defaultSendBuffer,
		actionInterval: defaultActionInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
				h.metrics.RecordWSConnection(-1)
			}
			h.mu.Unlock()
			h.logger.Info("websocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Info("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.RecordWSConnection(-1)
				h.logger.Info("websocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
					h.metrics.RecordWSConnection(-1)
					h.metrics.RecordWSError()
					h.logger.Warn("dropping slow websocket client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// AttachBus forwards every bus event to connected clients.
func (h *Hub) AttachBus(bus *events.Bus) {
	for _, t := range events.AllTypes {
		h.tokens = append(h.tokens, bus.Subscribe(t, func(ev events.Event) error {
			h.BroadcastEvent(ev)
			return nil
		}))
	}
}

// DetachBus stops forwarding bus events.
func (h *Hub) DetachBus() {
	for _, tok := range h.tokens {
		tok.Unsubscribe()
	}
	h.tokens = nil
}

// BroadcastEvent serializes an event and queues it for all clients.
// It never blocks: bus handlers run on the emitter's goroutine.
func (h *Hub) BroadcastEvent(ev events.Event) {
	payload, err := json.Marshal(toMessage(ev))
	if err != nil {
		h.logger.Error("failed to serialize event for broadcast", "type", ev.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.metrics.RecordWSError()
		h.logger.Warn("broadcast queue full, event dropped", "type", ev.Type)
	}
}

func toMessage(ev events.Event) Message {
	return Message{
		ID:        ev.ID,
		Type:      string(ev.Type),
		Timestamp: ev.Timestamp.UnixMilli(),
		Payload:   ev.Payload,
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// reply queues a message for one client if it is still connected.
func (h *Hub) reply(c *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
