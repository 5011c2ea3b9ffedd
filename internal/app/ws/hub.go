// Package ws pushes chat messages and notifications to online users over websockets.
package ws

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	Logger "immofox-http-service/pkg/logger"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 60 * time.Second
	sendBuffer   = 32
)

// Event is the JSON frame sent to clients
type Event struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type conn struct {
	userID uint
	wc     *websocket.Conn
	send   chan []byte
}

// Hub tracks the open connections per user
type Hub struct {
	mu       sync.RWMutex
	conns    map[uint]map[*conn]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates a hub accepting browser connections from allowedOrigin ("*" for any)
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		conns: make(map[uint]map[*conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

// Serve upgrades the request and blocks until the client disconnects
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) {
	wc, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger.Warning("ws upgrade for user %d failed: %v", userID, err)
		return
	}
	c := &conn{userID: userID, wc: wc, send: make(chan []byte, sendBuffer)}
	h.signon(c)
	go c.write()
	err = c.read()
	h.signoff(c)
	if err != nil {
		Logger.Warning("ws read for user %d failed: %v", userID, err)
	}
}

// PublishToUser sends the event to every connection of the user. Slow
// connections drop events; clients fall back to polling.
func (h *Hub) PublishToUser(userID uint, eventType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := h.conns[userID]
	if len(conns) == 0 {
		return
	}
	b, err := json.Marshal(Event{Type: eventType, Timestamp: time.Now().UnixMilli(), Payload: payload})
	if err != nil {
		Logger.Error("ws encode %s: %v", eventType, err)
		return
	}
	for c := range conns {
		select {
		case c.send <- b:
		default:
			Logger.Warning("ws send buffer full for user %d, dropping %s", userID, eventType)
		}
	}
}

// Online returns the number of open connections of a user
func (h *Hub) Online(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conns := range h.conns {
		for c := range conns {
			close(c.send)
		}
		delete(h.conns, id)
	}
}

func (h *Hub) signon(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.userID] == nil {
		h.conns[c.userID] = make(map[*conn]struct{})
	}
	h.conns[c.userID][c] = struct{}{}
}

func (h *Hub) signoff(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.conns[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return // already closed by Close
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.conns, c.userID)
	}
}

// read discards client frames; the connection is push only
func (c *conn) read() error {
	for {
		if _, _, err := c.wc.NextReader(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			if _, ok := err.(*websocket.CloseError); ok {
				return nil
			}
			return err
		}
	}
}

func (c *conn) write() {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer c.wc.Close()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.wc.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-t.C:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}
