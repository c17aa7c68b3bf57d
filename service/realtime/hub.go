package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is one change notification published to subscribers.
type Event struct {
	EventType string      `json:"eventType"`
	Table     string      `json:"table"`
	Origin    string      `json:"origin,omitempty"`
	New       interface{} `json:"new,omitempty"`
	Old       interface{} `json:"old,omitempty"`
}

type subscriber struct {
	conn   *websocket.Conn
	send   chan []byte
	tables map[string]bool // empty means all tables
}

// Hub fans change events out to websocket subscribers. Subscriptions are
// keyed by channel; each subscriber additionally filters by table.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*subscriber]bool
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*subscriber]bool),
	}
}

func (h *Hub) register(channel string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*subscriber]bool)
	}
	h.channels[channel][s] = true
}

func (h *Hub) unregister(channel string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.channels[channel]; ok {
		if subs[s] {
			delete(subs, s)
			close(s.send)
		}
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Publish delivers an event to every subscriber of the channel whose table
// filter matches. Slow subscribers are dropped rather than blocking.
func (h *Hub) Publish(channel string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("realtime: error marshaling event: %v", err)
		return
	}

	h.mu.RLock()
	subs := h.channels[channel]
	var drop []*subscriber
	for s := range subs {
		if len(s.tables) > 0 && !s.tables[ev.Table] {
			continue
		}
		select {
		case s.send <- payload:
		default:
			drop = append(drop, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range drop {
		h.unregister(channel, s)
	}
}

// HandleWebSocket upgrades the request and subscribes it to the requested
// channel and tables (?channel=public&tables=appointments,payments).
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = "public"
	}

	tables := make(map[string]bool)
	if raw := r.URL.Query().Get("tables"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables[t] = true
			}
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: error upgrading to WebSocket: %v", err)
		return
	}

	s := &subscriber{
		conn:   conn,
		send:   make(chan []byte, 16),
		tables: tables,
	}
	h.register(channel, s)

	go s.writePump()
	go s.readPump(h, channel)
}

// readPump drains the connection so control frames are processed and
// unregisters the subscriber when the connection drops.
func (s *subscriber) readPump(h *Hub, channel string) {
	defer func() {
		h.unregister(channel, s)
		s.conn.Close()
	}()

	s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("realtime: read error: %v", err)
			}
			return
		}
	}
}

// writePump forwards published events and keeps the connection alive with
// periodic pings.
func (s *subscriber) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
