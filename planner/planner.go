// Package planner is the data layer behind the booking dashboard: a typed
// REST client, an in-memory appointment cache and a coordinator that keeps
// both consistent with the selected date range and with realtime changes
// made in other sessions.
package planner

import (
	"context"
	"strings"

	"github.com/Jhol55/agendai-sub000/planner/cache"
	"github.com/Jhol55/agendai-sub000/planner/client"
	"github.com/Jhol55/agendai-sub000/planner/coordinator"
	"github.com/Jhol55/agendai-sub000/planner/daterange"
	"github.com/Jhol55/agendai-sub000/planner/realtime"
)

// Options configure a Session. BaseURL is required.
type Options struct {
	// BaseURL is the booking API root, e.g. "https://api.example.com/api/v1".
	BaseURL string
	// ClientID tags this session's writes so its own realtime events are
	// ignored. Empty disables self-event filtering.
	ClientID string
	// CalendarID, when set, restricts loaded appointments to one calendar.
	CalendarID string
	// Channel is the realtime channel to join. Empty means "public".
	Channel string
	// RefreshCron, when set, reloads the current range on a schedule.
	RefreshCron string
}

// Session bundles the client, cache and coordinator for one dashboard tab.
type Session struct {
	Client      *client.Client
	Cache       *cache.AppointmentCache
	Coordinator *coordinator.Coordinator
}

// Open connects a session and loads the initial range. The realtime
// subscription is optional: when the websocket dial fails the session still
// works, falling back to explicit reloads.
func Open(ctx context.Context, opts Options, initial daterange.Range) (*Session, error) {
	api := client.New(opts.BaseURL, opts.ClientID)
	c := cache.New(api)

	coord := coordinator.New(coordinator.Config{
		API:         api,
		Cache:       c,
		ClientID:    opts.ClientID,
		CalendarID:  opts.CalendarID,
		RefreshCron: opts.RefreshCron,
	})

	channel := opts.Channel
	if channel == "" {
		channel = "public"
	}
	var sub coordinator.Subscription
	if s, err := realtime.Subscribe(ctx, wsEndpoint(opts.BaseURL), channel,
		[]string{"appointments", "payments"}); err == nil {
		sub = s
	}

	if err := coord.Start(ctx, initial, sub); err != nil {
		coord.Stop()
		return nil, err
	}
	return &Session{Client: api, Cache: c, Coordinator: coord}, nil
}

// Close releases the coordinator and its subscription.
func (s *Session) Close() {
	s.Coordinator.Stop()
}

// wsEndpoint derives the websocket URL from the API base URL.
func wsEndpoint(baseURL string) string {
	ws := strings.Replace(baseURL, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.TrimRight(ws, "/") + "/ws"
}
