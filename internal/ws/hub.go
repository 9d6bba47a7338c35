package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

// Event types pushed to connected admin UIs
const (
	EventPermissionsUpdated    = "permissions_updated"
	EventPagePermissionUpdated = "page_permission_updated"
	EventMenuOrderUpdated      = "menu_order_updated"
	EventMenuOrderReset        = "menu_order_reset"
)

// Event tells clients which part of the permission state changed so they
// can refetch it
type Event struct {
	Type      string   `json:"type"`
	Role      string   `json:"role,omitempty"`
	PageID    uint     `json:"page_id,omitempty"`
	Actions   []string `json:"actions,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
	ChangedBy string   `json:"changed_by,omitempty"`
}

// Client is the subset of *websocket.Conn the hub writes to
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const broadcastBuffer = 64

type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	mutex      sync.Mutex
	done       chan struct{}
	log        logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Publish queues evt for every connected client. It never blocks; when the
// queue is full the event is dropped and clients catch up on their next fetch.
func (h *Hub) Publish(evt Event) {
	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Warn("ws: marshal event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.WithField("type", evt.Type).Warn("ws: broadcast queue full, event dropped")
	}
}

// Add registers a client. It returns false once the hub has stopped.
func (h *Hub) Add(c Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Remove unregisters a client without blocking after the hub has stopped
func (h *Hub) Remove(c Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Run owns the client set until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug("ws: client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
