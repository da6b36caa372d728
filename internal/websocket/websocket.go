package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"icon-server/internal/state"
	"icon-server/internal/types"
	"icon-server/pkg/config"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// Hub tracks connected progress clients
type Hub struct {
	clients map[*types.WSClient]bool
	mutex   sync.RWMutex
	stats   *state.ServerState
}

// NewHub returns a hub that greets new clients with a snapshot of stats
func NewHub(stats *state.ServerState) *Hub {
	return &Hub{
		clients: make(map[*types.WSClient]bool),
		stats:   stats,
	}
}

func (h *Hub) add(c *types.WSClient) {
	h.mutex.Lock()
	h.clients[c] = true
	h.mutex.Unlock()
}

// drop unregisters c and closes its queue. Safe to call more than once.
func (h *Hub) drop(c *types.WSClient) {
	h.mutex.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mutex.Unlock()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and keeps it registered until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := config.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	client := &types.WSClient{Conn: conn, Send: make(chan types.WSMessage, sendBuffer)}

	// Send the snapshot before registering so broadcasts can't interleave with it
	if h.stats != nil {
		snap := h.stats.Snapshot()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(types.WSMessage{Type: "state", State: &snap}); err != nil {
			logrus.WithError(err).Warn("Failed to send initial state")
			return
		}
	}

	h.add(client)
	defer h.drop(client)
	go h.writeLoop(client)
	logrus.WithField("clients", h.ClientCount()).Info("New WebSocket client connected")

	// Drain client frames until close; the feed is server-to-client only
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Error("WebSocket error")
			}
			break
		}
	}

	logrus.Info("WebSocket client disconnected")
}

// writeLoop is the only writer on c.Conn once c is registered
func (h *Hub) writeLoop(c *types.WSClient) {
	for msg := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteJSON(msg); err != nil {
			logrus.WithError(err).Warn("Dropping WebSocket client after failed write")
			h.drop(c)
			c.Conn.Close()
			for range c.Send {
			}
			return
		}
	}
}

// Broadcast queues a message for every connected client without blocking.
// A client whose queue is full is dropped.
func (h *Hub) Broadcast(msg types.WSMessage) {
	var slow []*types.WSClient

	h.mutex.RLock()
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	count := len(h.clients)
	h.mutex.RUnlock()

	logrus.WithFields(logrus.Fields{
		"message_type": msg.Type,
		"client_count": count,
	}).Debug("Broadcasting message to WebSocket clients")

	for _, c := range slow {
		logrus.Warn("Dropping slow WebSocket client")
		h.drop(c)
		if c.Conn != nil {
			c.Conn.Close()
		}
	}
}
