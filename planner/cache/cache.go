package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Jhol55/agendai-sub000/cmd/models"
	"github.com/Jhol55/agendai-sub000/planner/daterange"
)

// ErrNotCached is returned by Update and Delete when the appointment is not
// in the loaded set; no network call is made in that case.
var ErrNotCached = errors.New("appointment not in cache")

// API is the slice of the booking API the cache needs.
type API interface {
	GetAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (models.Appointment, error)
	CreateAppointment(ctx context.Context, appt models.Appointment) (models.Appointment, error)
	UpdateAppointment(ctx context.Context, old, updated models.Appointment) (models.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// AppointmentCache owns the in-memory appointment set for the currently
// loaded date range. It is rebuilt on range changes and patched in place by
// create/update/delete. Every entry satisfies end >= start.
type AppointmentCache struct {
	mu           sync.Mutex
	api          API
	appointments []models.Appointment
}

func New(api API) *AppointmentCache {
	return &AppointmentCache{api: api}
}

// Load replaces the entire cache with server data for the range. On fetch
// failure the previous contents stay in place and the error is returned.
// calendarID, when non-empty, filters the result to one calendar.
func (c *AppointmentCache) Load(ctx context.Context, r daterange.Range, calendarID string) ([]models.Appointment, error) {
	fetched, err := c.api.GetAppointments(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("loading appointments: %w", err)
	}

	loaded := make([]models.Appointment, 0, len(fetched))
	for _, a := range fetched {
		if calendarID != "" && a.CalendarID != calendarID {
			continue
		}
		if a.End.Before(a.Start) {
			continue
		}
		loaded = append(loaded, a)
	}

	c.mu.Lock()
	c.appointments = loaded
	c.mu.Unlock()
	return c.All(), nil
}

// Replace swaps in an already-processed appointment set, dropping entries
// that violate the end >= start invariant. Used by the coordinator after
// the expand/split pipeline.
func (c *AppointmentCache) Replace(appointments []models.Appointment) {
	kept := make([]models.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.End.Before(a.Start) {
			continue
		}
		kept = append(kept, a)
	}

	c.mu.Lock()
	c.appointments = kept
	c.mu.Unlock()
}

// Create sends the appointment to the server and appends the stored result,
// carrying the server-assigned id. The cache is untouched on failure.
func (c *AppointmentCache) Create(ctx context.Context, appt models.Appointment) (models.Appointment, error) {
	if appt.End.Before(appt.Start) {
		return models.Appointment{}, errors.New("end before start")
	}

	created, err := c.api.CreateAppointment(ctx, appt)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("creating appointment: %w", err)
	}

	c.mu.Lock()
	c.appointments = append(c.appointments, created)
	c.mu.Unlock()
	return created, nil
}

// Update sends {old, new} to the server for a locally cached appointment,
// then replaces the local copy with the new fields merged over the old.
// A miss returns ErrNotCached without touching the network.
func (c *AppointmentCache) Update(ctx context.Context, appt models.Appointment) (models.Appointment, error) {
	c.mu.Lock()
	idx := c.indexLocked(appt.ID)
	if idx < 0 {
		c.mu.Unlock()
		return models.Appointment{}, ErrNotCached
	}
	old := c.appointments[idx]
	c.mu.Unlock()

	updated, err := c.api.UpdateAppointment(ctx, old, appt)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("updating appointment %s: %w", appt.ID, err)
	}

	merged := merge(old, updated)

	c.mu.Lock()
	// Re-resolve the index: the cache may have been reloaded in between.
	if i := c.indexLocked(appt.ID); i >= 0 {
		c.appointments[i] = merged
	}
	c.mu.Unlock()
	return merged, nil
}

// Delete removes the appointment locally before the server call. If the
// server rejects the delete, the removed item is reinserted at its original
// position and the error is returned.
func (c *AppointmentCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrNotCached
	}
	removed := c.appointments[idx]
	c.appointments = append(c.appointments[:idx], c.appointments[idx+1:]...)
	c.mu.Unlock()

	if err := c.api.DeleteAppointment(ctx, id); err != nil {
		c.mu.Lock()
		if idx > len(c.appointments) {
			idx = len(c.appointments)
		}
		c.appointments = append(c.appointments[:idx],
			append([]models.Appointment{removed}, c.appointments[idx:]...)...)
		c.mu.Unlock()
		return fmt.Errorf("deleting appointment %s: %w", id, err)
	}
	return nil
}

// GetByID is a synchronous, cache-local lookup. It never hits the network.
func (c *AppointmentCache) GetByID(id string) (models.Appointment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.appointments[idx], true
	}
	return models.Appointment{}, false
}

// FetchByID is the server-authoritative read used for notification
// drill-down. Its result is not merged into the cache.
func (c *AppointmentCache) FetchByID(ctx context.Context, id string) (models.Appointment, error) {
	return c.api.GetAppointment(ctx, id)
}

// All returns a snapshot of the cached appointments.
func (c *AppointmentCache) All() []models.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Appointment, len(c.appointments))
	copy(out, c.appointments)
	return out
}

// Len returns the number of cached appointments.
func (c *AppointmentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.appointments)
}

func (c *AppointmentCache) indexLocked(id string) int {
	for i, a := range c.appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// merge shallow-merges the updated appointment over the old one: zero-value
// fields of the update keep the old value, the id always survives.
func merge(old, updated models.Appointment) models.Appointment {
	out := updated
	out.ID = old.ID
	if out.CalendarID == "" {
		out.CalendarID = old.CalendarID
	}
	if out.ResourceID == "" {
		out.ResourceID = old.ResourceID
	}
	if out.ClientID == "" {
		out.ClientID = old.ClientID
	}
	if out.Title == "" {
		out.Title = old.Title
	}
	if out.Start.IsZero() {
		out.Start = old.Start
	}
	if out.End.IsZero() {
		out.End = old.End
	}
	if out.Status == "" {
		out.Status = old.Status
	}
	if out.Details == (models.AppointmentDetails{}) {
		out.Details = old.Details
	}
	if out.Payments == nil {
		out.Payments = old.Payments
	}
	return out
}
