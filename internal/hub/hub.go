// Package hub fans events out to websocket subscribers. Subscribers are
// strictly receive-only; a client that cannot keep up is dropped rather than
// allowed to stall the broadcast path.
package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 20 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, 64), done: make(chan struct{})}
}

// close signals shutdown via done only. The send channel is never closed:
// enqueue may race with close, and sending on a closed channel would panic
// where a send into an abandoned buffer is harmless.
func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *client) enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Hub is the shared broadcast group. OnConnect, when set, supplies the
// events replayed to each new subscriber so it starts with current state
// instead of waiting for the next change.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	// OnConnect is read at upgrade time; set it before serving.
	OnConnect func() []any

	mu   sync.Mutex
	subs map[*client]struct{}
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(os.Stdout, "[HUB] ", log.LstdFlags)
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Voting is open to any origin by design of the surface; the
			// HTTP layer owns whatever access control applies.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*client]struct{}),
	}
}

// SubscriberCount reports the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast marshals v once and enqueues it to every subscriber. Subscribers
// whose buffers are full are closed and removed.
func (h *Hub) Broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.logger.Printf("broadcast marshal: %v", err)
		return
	}

	h.mu.Lock()
	for c := range h.subs {
		if ok := c.enqueue(b); !ok {
			c.close()
			delete(h.subs, c)
		}
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request and serves the subscriber until it
// disconnects. Inbound messages are drained and discarded; the read loop
// exists only for keepalive and close detection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: remote=%s err=%v", r.RemoteAddr, err)
		return
	}

	c := newClient(conn)
	h.mu.Lock()
	h.subs[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Printf("subscriber connected: remote=%s", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.writePump(c)

	if h.OnConnect != nil {
		for _, ev := range h.OnConnect() {
			b, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			_ = c.enqueue(b)
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	c.close()
	h.logger.Printf("subscriber disconnected: remote=%s", r.RemoteAddr)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.subs, c)
	h.mu.Unlock()
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer func() {
		h.remove(c)
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
