// Package websocket serves request/reply sessions over websocket
// connections. Every inbound text frame is handed to a Handler and its
// reply is queued back to the same connection.
package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
)

const (
	writeDeadline = 5 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = 30 * time.Second
	readLimit     = 1 << 20 // 1 MiB
	sendBuffer    = 64
)

var upgrader = gws.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler answers one inbound frame. Returning nil sends nothing.
type Handler func(ctx context.Context, clientID string, payload []byte) []byte

// Hub tracks live connections and dispatches their frames to a Handler.
type Hub struct {
	handle  Handler
	clients map[string]*client
	mutex   sync.RWMutex
}

type client struct {
	id      string
	conn    *gws.Conn
	send    chan []byte
	hub     *Hub
	ctx     context.Context
	cancel  context.CancelFunc
	closed  chan struct{}
	closeMu sync.Mutex
}

// NewHub returns a hub that answers frames with handle.
func NewHub(handle Handler) *Hub {
	return &Hub{
		handle:  handle,
		clients: make(map[string]*client),
	}
}

// ClientCount reports the number of open connections.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	clients := make([]*client, 0, len(h.clients))
	for id, c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, id)
	}
	h.mutex.Unlock()
	for _, c := range clients {
		c.close()
	}
}

// HandleWebSocket upgrades the request and serves the connection until the
// peer goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("event=ws.upgrade error=%q", err.Error())
		return
	}

	c := newClient(h, conn)
	h.mutex.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mutex.Unlock()
	log.Printf("event=ws.connect client=%s total=%d", c.id, total)

	go c.writePump()
	go c.readPump()
}

func newClient(h *Hub, conn *gws.Conn) *client {
	ctx, cancel := context.WithCancel(context.Background())
	return &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
		ctx:    ctx,
		cancel: cancel,
		closed: make(chan struct{}),
	}
}

func (h *Hub) removeClient(id string) {
	h.mutex.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	total := len(h.clients)
	h.mutex.Unlock()

	if ok && c != nil {
		c.close()
		log.Printf("event=ws.disconnect client=%s total=%d", id, total)
	}
}

// enqueue queues payload for c, dropping the oldest pending frame when the
// buffer is full. Frames for a closed client are discarded.
func (h *Hub) enqueue(c *client, payload []byte) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	select {
	case <-c.closed:
		return
	default:
	}

	for {
		select {
		case c.send <- payload:
			return
		default:
		}
		select {
		case <-c.send:
			log.Printf("event=ws.drop client=%s reason=buffer_full", c.id)
		default:
		}
	}
}

func (c *client) readPump() {
	defer c.hub.removeClient(c.id)

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, payload, err := c.conn.ReadMessage()
		if err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure) {
				log.Printf("event=ws.read client=%s error=%q", c.id, err.Error())
			}
			return
		}
		if msgType != gws.TextMessage || c.hub.handle == nil {
			continue
		}
		if reply := c.hub.handle(c.ctx, c.id, payload); reply != nil {
			c.hub.enqueue(c, reply)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(gws.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(gws.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}

func (c *client) close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	select {
	case <-c.closed:
	default:
		close(c.closed)
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}
