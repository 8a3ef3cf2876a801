// Package realtime pushes refreshed quotes to websocket subscribers.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// DefaultWriteTimeout bounds every write to a subscriber
const DefaultWriteTimeout = 5 * time.Second

// Message is the frame sent to subscribers
type Message struct {
	Type  string       `json:"type"`
	Quote *quote.Quote `json:"quote,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla connections allow one concurrent writer
}

func (c *client) write(v any, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Hub keeps the set of subscribers and fans quotes out to them.
// Subscribers that fail a write are dropped.
type Hub struct {
	mu           sync.RWMutex
	clients      map[*client]struct{}
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *logger.Logger
}

// NewHub creates a hub. An empty allowedOrigins accepts any origin.
func NewHub(allowedOrigins []string, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(origins) == 0 || origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		writeTimeout: DefaultWriteTimeout,
		logger:       log.WithComponent("realtime"),
	}
}

// ServeHTTP upgrades the request and keeps the subscriber until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	h.add(c)
	if err := c.write(Message{Type: "hello"}, h.writeTimeout); err != nil {
		h.remove(c)
		return
	}

	// subscribers never send anything we act on; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

// Publish sends q to every subscriber
func (h *Hub) Publish(q *quote.Quote) {
	h.broadcast(Message{Type: "quote", Quote: q})
}

// Clients returns the number of connected subscribers
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(msg, h.writeTimeout); err != nil {
			h.logger.Debug("dropping subscriber", "error", err)
			h.remove(c)
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Ensure Hub can receive refreshed quotes
var _ pricing.Publisher = (*Hub)(nil)
