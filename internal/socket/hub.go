// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"garden-application-api-server/internal/metrics"
	"garden-application-api-server/internal/models"
	"garden-application-api-server/internal/plot"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event names sent to clients.
const (
	PinCreated  = "pin_created"
	PinDeleted  = "pin_deleted"
	PlotUpdated = "plot_updated"
)

const (
	writeWait = 10 * time.Second
	// Events queued per client before it counts as stalled and is dropped.
	sendBuffer = 32
)

var errStalled = errors.New("send queue full")

// Event is the JSON message pushed to every connected client.
type Event struct {
	Event string                `json:"event"`
	PinID string                `json:"pinId,omitempty"`
	Pin   *models.Pin           `json:"pin,omitempty"`
	Cells []plot.SerializedCell `json:"cells,omitempty"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	// send is drained by the client's writer goroutine and closed on
	// unregister.
	send chan []byte
}

// Hub tracks connected websocket clients and fans events out to them. Each
// client has its own queue and writer goroutine, so a slow client never holds
// up Broadcast.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// Register adds conn and returns the id to unregister it with. userID is empty
// for anonymous viewers.
func (h *Hub) Register(userID string, conn *websocket.Conn) string {
	id := uuid.NewString()
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()
	go h.writePump(id, c)
	metrics.WebSocketClients.Inc()
	h.logger.Debug("WebSocket client registered", zap.String("client_id", id), zap.String("user_id", userID))
	return id
}

// Unregister removes a client and stops its writer. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		metrics.WebSocketClients.Dec()
		h.logger.Debug("WebSocket client unregistered", zap.String("client_id", id))
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues ev for every client without waiting on the network.
// Clients whose queue is full are dropped and closed; their read loops then
// exit.
func (h *Hub) Broadcast(ev Event) {
	message, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to encode websocket event", zap.String("event", ev.Event), zap.Error(err))
		return
	}

	var stalled []string
	h.mu.RLock()
	for id, c := range h.clients {
		select {
		case c.send <- message:
		default:
			stalled = append(stalled, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range stalled {
		h.drop(id, errStalled)
	}
}

// writePump writes queued events to one client in order until its queue is
// closed or a write fails.
func (h *Hub) writePump(id string, c *client) {
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.drop(id, err)
			return
		}
	}
}

func (h *Hub) drop(id string, reason error) {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.logger.Warn("Dropping websocket client", zap.String("client_id", id), zap.Error(reason))
	h.Unregister(id)
	c.conn.Close()
}
