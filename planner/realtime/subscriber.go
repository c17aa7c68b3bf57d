package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// Event is one change notification from the realtime channel.
type Event struct {
	EventType string          `json:"eventType"`
	Table     string          `json:"table"`
	Origin    string          `json:"origin,omitempty"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
}

// Subscriber is a websocket subscription to one channel, filtered to a set
// of tables. Events arrive on Events(); the channel is closed when the
// connection drops or Close is called.
type Subscriber struct {
	conn      *websocket.Conn
	events    chan Event
	closeOnce sync.Once
	done      chan struct{}
}

// Subscribe dials the realtime endpoint and joins the given channel for the
// given tables. wsURL is the ws:// or wss:// endpoint base.
func Subscribe(ctx context.Context, wsURL, channel string, tables []string) (*Subscriber, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("channel", channel)
	q.Set("tables", strings.Join(tables, ","))
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s := &Subscriber{
		conn:   conn,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the stream of incoming events.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Close releases the connection. Safe to call more than once.
func (s *Subscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		deadline := time.Now().Add(time.Second)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.conn.Close()
	})
	return err
}

func (s *Subscriber) readLoop() {
	defer close(s.events)
	for {
		var ev Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			select {
			case <-s.done:
			default:
				log.Printf("realtime: read error: %v", err)
			}
			return
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}
