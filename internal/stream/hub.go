// Package stream broadcasts live win-probability estimates over websockets.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ballpark-live/internal/metrics"
	"github.com/yourusername/ballpark-live/internal/models"
)

const clientSendBuffer = 16

// Hub fans out estimate frames to every connected websocket client.
// Slow clients are dropped rather than allowed to block the broadcast.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *logrus.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a broadcast hub
func NewHub(writeTimeout time.Duration, logger *logrus.Logger) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		logger:       logger,
		clients:      make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the connection
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.SetStreamClients(count)

	h.logger.WithField("clients", count).Debug("Stream client connected")

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Broadcast sends one estimate frame to every connected client
func (h *Hub) Broadcast(est *models.Estimate) {
	payload, err := json.Marshal(est)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode estimate for stream")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// client is not keeping up, let its write loop exit
			go h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every client connection and stops accepting new ones
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
	metrics.SetStreamClients(0)
}

// writeLoop drains the client's send channel onto the connection
func (h *Hub) writeLoop(c *client) {
	defer h.drop(c)

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readLoop discards inbound messages and notices closed connections
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop unregisters and closes a client; safe to call more than once
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, registered := h.clients[c]
	if registered {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if registered {
		c.conn.Close()
		metrics.SetStreamClients(count)
		h.logger.WithField("clients", count).Debug("Stream client disconnected")
	}
}
