package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

// Client is a typed HTTP client for the booking API. Every write carries the
// X-Client-ID header so realtime subscribers can recognize their own writes.
type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
}

func New(baseURL, clientID string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// ClientID returns the origin tag this client stamps on its writes.
func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) GetAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))

	var out []models.Appointment
	if err := c.do(ctx, http.MethodGet, "get-appointments", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAppointment is the server-authoritative read used for notification
// drill-down. It is a different consistency domain than the local cache.
func (c *Client) GetAppointment(ctx context.Context, id string) (models.Appointment, error) {
	q := url.Values{}
	q.Set("id", id)

	var out models.Appointment
	if err := c.do(ctx, http.MethodGet, "get-appointment", q, nil, &out); err != nil {
		return models.Appointment{}, err
	}
	return out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, appt models.Appointment) (models.Appointment, error) {
	var out models.Appointment
	if err := c.do(ctx, http.MethodPost, "create-appointment", nil, appt, &out); err != nil {
		return models.Appointment{}, err
	}
	return out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, old, updated models.Appointment) (models.Appointment, error) {
	body := map[string]models.Appointment{"old": old, "new": updated}

	var out models.Appointment
	if err := c.do(ctx, http.MethodPost, "update-appointment", nil, body, &out); err != nil {
		return models.Appointment{}, err
	}
	return out, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "delete-appointment", nil, map[string]string{"id": id}, nil)
}

func (c *Client) GetOperatingHours(ctx context.Context) ([]models.OperatingHours, error) {
	var out []models.OperatingHours
	if err := c.do(ctx, http.MethodGet, "get-operating-hours", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateOperatingHours(ctx context.Context, hours []models.OperatingHours) error {
	return c.do(ctx, http.MethodPost, "update-operating-hours", nil, hours, nil)
}

func (c *Client) GetBlockedTimeSlots(ctx context.Context, from, to time.Time) ([]models.BlockedTimeSlot, error) {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))

	var out []models.BlockedTimeSlot
	if err := c.do(ctx, http.MethodGet, "get-blocked-time-slot", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddBlockedTimeSlot(ctx context.Context, slot models.BlockedTimeSlot) (models.BlockedTimeSlot, error) {
	var out models.BlockedTimeSlot
	if err := c.do(ctx, http.MethodPost, "add-blocked-time-slot", nil, slot, &out); err != nil {
		return models.BlockedTimeSlot{}, err
	}
	return out, nil
}

func (c *Client) GetSettings(ctx context.Context, id string) ([]models.Setting, error) {
	q := url.Values{}
	if id != "" {
		q.Set("id", id)
	}

	var out []models.Setting
	if err := c.do(ctx, http.MethodGet, "get-settings", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, settings []models.Setting) error {
	return c.do(ctx, http.MethodPost, "update-settings", nil, settings, nil)
}

func (c *Client) GetServices(ctx context.Context) ([]models.ServiceOffering, error) {
	var out []models.ServiceOffering
	if err := c.do(ctx, http.MethodGet, "get-services", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddService(ctx context.Context, svc models.ServiceOffering) (models.ServiceOffering, error) {
	var out models.ServiceOffering
	if err := c.do(ctx, http.MethodPost, "add-service", nil, svc, &out); err != nil {
		return models.ServiceOffering{}, err
	}
	return out, nil
}

func (c *Client) UpdateService(ctx context.Context, svc models.ServiceOffering) (models.ServiceOffering, error) {
	var out models.ServiceOffering
	if err := c.do(ctx, http.MethodPost, "update-service", nil, svc, &out); err != nil {
		return models.ServiceOffering{}, err
	}
	return out, nil
}

func (c *Client) DeleteServices(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "delete-services", nil, map[string][]string{"ids": ids}, nil)
}

func (c *Client) SearchClients(ctx context.Context, name string) ([]models.Client, error) {
	q := url.Values{}
	q.Set("name", name)

	var out []models.Client
	if err := c.do(ctx, http.MethodGet, "get-clients", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NotificationPage is one page of the notification listing.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	TotalPages    int64                 `json:"total_pages"`
}

func (c *Client) GetNotifications(ctx context.Context, page int) (NotificationPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var out NotificationPage
	if err := c.do(ctx, http.MethodGet, "get-notifications", q, nil, &out); err != nil {
		return NotificationPage{}, err
	}
	return out, nil
}

func (c *Client) UpdateNotification(ctx context.Context, n models.Notification) error {
	return c.do(ctx, http.MethodPost, "update-notification", nil, n, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: server returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", path, err)
	}
	return nil
}
