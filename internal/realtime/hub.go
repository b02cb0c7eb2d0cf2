package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 64
)

type client struct {
	id     string
	conn   *websocket.Conn
	tables map[string]bool
	send   chan []byte
	done   chan struct{}
}

func (c *client) wants(table string) bool {
	return len(c.tables) == 0 || c.tables[table]
}

// Hub pushes change events to connected websocket clients. Slow clients
// drop events rather than block the hub.
type Hub struct {
	upgrader websocket.Upgrader
	clients  sync.Map
}

func NewHub(allowedOrigins []string) *Hub {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin] || allowed["*"]
			},
		},
	}
}

// ServeWS upgrades the request and registers a client subscribed to tables
// (all tables when empty).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tables []string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.LogError(err, "realtime: websocket upgrade failed")
		return
	}

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		tables: map[string]bool{},
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	for _, t := range tables {
		if t != "" {
			c.tables[t] = true
		}
	}
	h.clients.Store(c.id, c)
	utils.LogDebug("Realtime client connected", map[string]interface{}{"client_id": c.id, "tables": tables})

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.clients.Delete(c.id)
		close(c.done)
		c.conn.Close()
		utils.LogDebug("Realtime client disconnected", map[string]interface{}{"client_id": c.id})
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// Broadcast sends ev to every client subscribed to its table.
func (h *Hub) Broadcast(ev models.ChangeEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.clients.Range(func(_, v any) bool {
		c := v.(*client)
		if !c.wants(ev.Table) {
			return true
		}
		select {
		case c.send <- msg:
		default:
			utils.LogDebug("Realtime client too slow, event dropped", map[string]interface{}{"client_id": c.id})
		}
		return true
	})
}

// Publish lets the hub act as a listener Sink when redis is not configured.
func (h *Hub) Publish(_ context.Context, ev models.ChangeEvent) error {
	h.Broadcast(ev)
	return nil
}

// Consume relays events from redis pub/sub to local clients until ctx ends.
func (h *Hub) Consume(ctx context.Context, ps *cache.ChangesPubSub) error {
	return ps.Subscribe(ctx, func(_ context.Context, ev models.ChangeEvent) {
		h.Broadcast(ev)
	})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	n := 0
	h.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
