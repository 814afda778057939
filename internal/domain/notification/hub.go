package notification

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Connection is one websocket client
type Connection struct {
	UserID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans notification events out to connected clients. Delivery is
// best-effort: a slow or absent client never blocks the mutating
// operation that produced the event.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]map[*Connection]bool
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
	}
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c.UserID] == nil {
		h.connections[c.UserID] = make(map[*Connection]bool)
	}
	h.connections[c.UserID][c] = true
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.connections[c.UserID]; ok {
		if conns[c] {
			delete(conns, c)
			close(c.send)
			if len(conns) == 0 {
				delete(h.connections, c.UserID)
			}
		}
	}
}

// SendToUserJSON delivers a payload to every open connection of a user.
// Full client buffers drop the event rather than block.
func (h *Hub) SendToUserJSON(userID uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections[userID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("user_id", userID.String()).Msg("notification event dropped, client buffer full")
		}
	}
	return nil
}

// ServeWS upgrades an authenticated request to a websocket connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &Connection{UserID: userID, conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register(c)

	go c.writePump(h)
	go c.readPump(h)
}

func (c *Connection) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Clients only listen; any read error tears the connection down
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
