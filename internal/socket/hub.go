// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"coffee-os-api-server/internal/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many events may queue for one connection before it
	// is considered stalled and dropped.
	sendBuffer = 64
)

// Event is the message pushed to subscribers when a resource changes.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// client owns the write side of one connection through its writer goroutine.
type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			zap.L().Warn("websocket write failed", zap.String("user_id", c.userID), zap.Error(err))
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub tracks the open websocket connections. A user may hold several.
// Each connection has its own bounded queue; a reader that falls behind is
// disconnected rather than blocking publishers.
type Hub struct {
	clients map[string]map[*websocket.Conn]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]*client),
	}
}

// Register starts delivering events to conn. The caller keeps reading from
// conn and calls Unregister when the read loop ends.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[*websocket.Conn]*client)
		h.clients[userID] = conns
	}
	conns[conn] = c
	h.mu.Unlock()

	metrics.WebsocketClients.Inc()
	go c.writePump()
	zap.L().Debug("websocket client registered", zap.String("user_id", userID))
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	removed := h.remove(userID, conn)
	h.mu.Unlock()
	if removed {
		zap.L().Debug("websocket client unregistered", zap.String("user_id", userID))
	}
}

// remove drops the connection and stops its writer. h.mu must be held.
func (h *Hub) remove(userID string, conn *websocket.Conn) bool {
	conns, ok := h.clients[userID]
	if !ok {
		return false
	}
	c, ok := conns[conn]
	if !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
	close(c.send)
	metrics.WebsocketClients.Dec()
	return true
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

// enqueue hands message to each matching connection without blocking.
// Connections whose queue is full are disconnected.
func (h *Hub) enqueue(match func(userID string) bool, message []byte) {
	var stalled []*client

	h.mu.RLock()
	for userID, conns := range h.clients {
		if !match(userID) {
			continue
		}
		for _, c := range conns {
			select {
			case c.send <- message:
			default:
				stalled = append(stalled, c)
			}
		}
	}
	h.mu.RUnlock()

	if len(stalled) == 0 {
		return
	}
	dropped := stalled[:0]
	h.mu.Lock()
	for _, c := range stalled {
		if h.remove(c.userID, c.conn) {
			dropped = append(dropped, c)
		}
	}
	h.mu.Unlock()

	// Closing the socket unblocks a writer stuck on a full TCP buffer.
	for _, c := range dropped {
		_ = c.conn.Close()
		zap.L().Warn("websocket client too slow, disconnected", zap.String("user_id", c.userID))
	}
}

// Publish broadcasts a change event such as "coffeeShop.created".
func (h *Hub) Publish(eventType string, data interface{}) {
	message, ok := encode(eventType, data)
	if !ok {
		return
	}
	metrics.ChangeEventsTotal.WithLabelValues(eventType).Inc()
	h.enqueue(func(string) bool { return true }, message)
}

// Send queues an event for every connection of one user. An offline user is
// not an error.
func (h *Hub) Send(userID, eventType string, data interface{}) {
	message, ok := encode(eventType, data)
	if !ok {
		return
	}
	metrics.ChangeEventsTotal.WithLabelValues(eventType).Inc()
	h.enqueue(func(id string) bool { return id == userID }, message)
}

func encode(eventType string, data interface{}) ([]byte, bool) {
	message, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		zap.L().Error("marshal websocket event", zap.String("event", eventType), zap.Error(err))
		return nil, false
	}
	return message, true
}
