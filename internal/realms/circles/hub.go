package circles

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Event is one realtime notification pushed to circle members.
type Event struct {
	Type     string `json:"type"`
	CircleID string `json:"circle_id"`
	Payload  any    `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to the websocket subscribers of each circle.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]struct{})}
}

// Broadcast queues the event to every subscriber of the circle. Slow
// consumers are dropped rather than blocking the sender.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("circle event marshal failed", "realm", "circles", "error", err.Error())
		return
	}

	h.mu.RLock()
	room := h.rooms[event.CircleID]
	var stale []*client
	for c := range room {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.remove(event.CircleID, c)
	}
}

// Serve pumps events to one websocket connection until it closes.
// Incoming frames are drained and ignored; posting goes through HTTP.
func (h *Hub) Serve(circleID string, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 32)}

	h.mu.Lock()
	if h.rooms[circleID] == nil {
		h.rooms[circleID] = make(map[*client]struct{})
	}
	h.rooms[circleID][c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(circleID, c)
				return
			}
		case <-done:
			h.remove(circleID, c)
			return
		}
	}
}

func (h *Hub) remove(circleID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[circleID]
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	c.conn.Close()
}

// Subscribers reports the live connection count for a circle.
func (h *Hub) Subscribers(circleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[circleID])
}
