package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/store"
)

const broadcastBuffer = 1000

// Hub maintains the set of active clients and broadcasts games to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan *store.GameBoxscore
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	totalConnections int64
	totalMessages    int64
	totalDropped     int64
	metricsMu        sync.Mutex

	log *logrus.Entry
}

// NewHub creates a new Hub instance
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *store.GameBoxscore, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop. It closes every client on return.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case game := <-h.broadcast:
			h.broadcastGame(game)
		}
	}
}

// Register adds a client to the hub. It returns false once the hub stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a game for every matching client. A full queue drops the
// game.
func (h *Hub) Broadcast(game *store.GameBoxscore) {
	select {
	case h.broadcast <- game:
	default:
		h.log.WithField("game_id", game.GameID).Warn("broadcast buffer full, dropping game")
	}
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	h.log.WithFields(logrus.Fields{"client_id": c.ID, "total": total}).Info("client connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		h.log.WithFields(logrus.Fields{"client_id": c.ID, "total": len(h.clients)}).Info("client disconnected")
	}
}

func (h *Hub) broadcastGame(game *store.GameBoxscore) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := ServerMessage{
		Type:      MessageTypeBoxscore,
		Payload:   NewBoxscoreUpdate(game),
		Timestamp: time.Now(),
	}

	var sent, dropped int64
	for _, c := range clients {
		if !c.Filter().Matches(game) {
			continue
		}
		if c.TrySend(message) {
			sent++
			continue
		}
		// Slow client: its buffer is full, so drop it.
		dropped++
		h.unregisterClient(c)
	}

	h.metricsMu.Lock()
	h.totalMessages += sent
	h.totalDropped += dropped
	h.metricsMu.Unlock()

	if dropped > 0 {
		h.log.WithField("dropped", dropped).Warn("disconnected slow clients")
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	active := h.GetClientCount()

	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	return map[string]interface{}{
		"active_clients":     active,
		"total_connections":  h.totalConnections,
		"total_messages":     h.totalMessages,
		"dropped_clients":    h.totalDropped,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.WithField("clients", len(h.clients)).Info("hub shutting down")
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
}
