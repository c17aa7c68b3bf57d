package coordinator

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Jhol55/agendai-sub000/cmd/models"
	"github.com/Jhol55/agendai-sub000/planner/cache"
	"github.com/Jhol55/agendai-sub000/planner/daterange"
	"github.com/Jhol55/agendai-sub000/planner/realtime"
	"github.com/Jhol55/agendai-sub000/planner/recurrence"
	"github.com/Jhol55/agendai-sub000/planner/split"
)

// API is the slice of the booking API the coordinator drives directly.
// Appointment mutations go through the cache instead.
type API interface {
	GetOperatingHours(ctx context.Context) ([]models.OperatingHours, error)
	GetAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	GetBlockedTimeSlots(ctx context.Context, from, to time.Time) ([]models.BlockedTimeSlot, error)
}

// Subscription is a realtime event source, released on Stop.
type Subscription interface {
	Events() <-chan realtime.Event
	Close() error
}

// Invalidator decides what a realtime change does to the loaded range. The
// default implementation schedules a debounced full reload; an incremental
// strategy can be substituted without touching callers.
type Invalidator interface {
	OnInvalidate(r daterange.Range)
}

// GridBounds are the visible time-of-day limits of the calendar grid, in
// minutes from midnight.
type GridBounds struct {
	MinMinute int
	MaxMinute int
}

// BlockedOccurrence is one calendar-anchored, per-day instance of a blocked
// time slot after recurrence expansion and multi-day splitting.
type BlockedOccurrence struct {
	SourceID      string
	Description   string
	Start         time.Time
	End           time.Time
	OriginalStart *time.Time
	OriginalEnd   *time.Time
}

const defaultDebounceDelay = time.Second

// Config wires a Coordinator. API and Cache are required.
type Config struct {
	API        API
	Cache      *cache.AppointmentCache
	ClientID   string // own realtime origin, used to skip self-triggered events
	CalendarID string
	// DebounceDelay is the quiet period before a realtime-triggered reload.
	// Zero means one second.
	DebounceDelay time.Duration
	// RefreshCron, when set, reloads the current range on a cron schedule.
	RefreshCron string
	// Invalidator overrides the debounced-reload default.
	Invalidator Invalidator
}

// Coordinator reacts to date-range changes, operating-hours edits and
// realtime invalidation, and keeps the cache, blocked occurrences and grid
// bounds consistent with the selected range.
type Coordinator struct {
	api        API
	cache      *cache.AppointmentCache
	clientID   string
	calendarID string

	debounce    *Debouncer
	invalidator Invalidator
	cron        *cron.Cron
	sub         Subscription

	mu       sync.Mutex
	rng      daterange.Range
	viewMode daterange.ViewMode
	hours    []models.OperatingHours
	blocked  []BlockedOccurrence
	grid     GridBounds
	gen      uint64
}

func New(cfg Config) *Coordinator {
	delay := cfg.DebounceDelay
	if delay <= 0 {
		delay = defaultDebounceDelay
	}

	c := &Coordinator{
		api:        cfg.API,
		cache:      cfg.Cache,
		clientID:   cfg.ClientID,
		calendarID: cfg.CalendarID,
		debounce:   NewDebouncer(delay),
		grid:       GridBounds{MinMinute: 0, MaxMinute: 24 * 60},
	}
	c.invalidator = cfg.Invalidator
	if c.invalidator == nil {
		c.invalidator = debouncedReload{c}
	}
	if cfg.RefreshCron != "" {
		c.cron = cron.New()
		if _, err := c.cron.AddFunc(cfg.RefreshCron, func() {
			c.invalidator.OnInvalidate(c.Range())
		}); err != nil {
			log.Printf("coordinator: invalid refresh cron %q: %v", cfg.RefreshCron, err)
			c.cron = nil
		}
	}
	return c
}

// debouncedReload is the default invalidation strategy: a delayed full
// reload of the current range, letting the server write settle first.
type debouncedReload struct {
	c *Coordinator
}

func (d debouncedReload) OnInvalidate(r daterange.Range) {
	d.c.debounce.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.c.reload(ctx, r); err != nil {
			log.Printf("coordinator: background reload failed: %v", err)
		}
	})
}

// Start performs the initial load and begins consuming the subscription.
// The subscription is released by Stop.
func (c *Coordinator) Start(ctx context.Context, r daterange.Range, sub Subscription) error {
	c.sub = sub
	if sub != nil {
		go c.watch(ctx, sub)
	}
	if c.cron != nil {
		c.cron.Start()
	}
	return c.SetRange(ctx, r)
}

// Stop releases the subscription and cancels timers. Safe on all exit paths.
func (c *Coordinator) Stop() {
	c.debounce.Stop()
	if c.cron != nil {
		c.cron.Stop()
	}
	if c.sub != nil {
		if err := c.sub.Close(); err != nil {
			log.Printf("coordinator: closing subscription: %v", err)
		}
	}
}

// SetRange switches the visible range and reloads everything for it.
func (c *Coordinator) SetRange(ctx context.Context, r daterange.Range) error {
	c.mu.Lock()
	c.rng = r
	c.viewMode = daterange.ComputeViewMode(r)
	c.mu.Unlock()
	return c.reload(ctx, r)
}

// Reload re-runs the pipeline for the current range, e.g. after an
// operating-hours edit.
func (c *Coordinator) Reload(ctx context.Context) error {
	return c.reload(ctx, c.Range())
}

// reload runs the pipeline: operating hours, then appointments through
// expand/split, then blocked slots through the same pipeline. A failing
// step aborts the rest of the run and the last good state is kept. Results
// from a run that was superseded by a newer one are discarded.
func (c *Coordinator) reload(ctx context.Context, r daterange.Range) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	hours, err := c.api.GetOperatingHours(ctx)
	if err != nil {
		return err
	}

	raw, err := c.api.GetAppointments(ctx, r.From, r.To)
	if err != nil {
		return err
	}

	bounds := split.BoundsFromOperatingHours(hours)
	appointments := processAppointments(raw, r, bounds, c.calendarID)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.hours = hours
	c.cache.Replace(appointments)
	c.grid = computeGrid(hours, c.cache.All())
	c.mu.Unlock()

	rawBlocked, err := c.api.GetBlockedTimeSlots(ctx, r.From, r.To)
	if err != nil {
		return err
	}
	blocked := processBlocked(rawBlocked, r, bounds)

	c.mu.Lock()
	if gen == c.gen {
		c.blocked = blocked
	}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) watch(ctx context.Context, sub Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if ev.Origin != "" && ev.Origin == c.clientID {
				continue
			}
			if ev.Table != "appointments" && ev.Table != "payments" {
				continue
			}
			c.invalidator.OnInvalidate(c.Range())
		}
	}
}

func (c *Coordinator) Range() daterange.Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng
}

func (c *Coordinator) ViewMode() daterange.ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMode
}

func (c *Coordinator) OperatingHours() []models.OperatingHours {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.OperatingHours, len(c.hours))
	copy(out, c.hours)
	return out
}

func (c *Coordinator) Blocked() []BlockedOccurrence {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]BlockedOccurrence, len(c.blocked))
	copy(out, c.blocked)
	return out
}

func (c *Coordinator) Grid() GridBounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid
}

// processAppointments runs fetched appointments through the expand/split
// pipeline and keeps the per-day instances whose start falls in range.
func processAppointments(raw []models.Appointment, r daterange.Range, bounds split.BoundsFunc, calendarID string) []models.Appointment {
	var out []models.Appointment
	for _, a := range raw {
		if calendarID != "" && a.CalendarID != calendarID {
			continue
		}
		for _, occ := range recurrence.Expand(recurrence.Interval(a.Start, a.End), r) {
			subs := split.AcrossDays(split.Slot{Start: occ.Start, End: occ.End}, bounds)
			for _, s := range subs {
				if !r.Contains(s.Start) {
					continue
				}
				inst := a
				inst.Start = s.Start
				inst.End = s.End
				inst.OriginalStart = s.OriginalStart
				inst.OriginalEnd = s.OriginalEnd
				out = append(out, inst)
			}
		}
	}
	return out
}

// processBlocked expands each blocked slot into calendar-anchored
// occurrences, then splits multi-day ones per day.
func processBlocked(raw []models.BlockedTimeSlot, r daterange.Range, bounds split.BoundsFunc) []BlockedOccurrence {
	var out []BlockedOccurrence
	for _, b := range raw {
		for _, occ := range recurrence.Expand(recurrence.FromBlockedSlot(b), r) {
			subs := split.AcrossDays(split.Slot{Start: occ.Start, End: occ.End}, bounds)
			for _, s := range subs {
				if !r.Contains(s.Start) {
					continue
				}
				out = append(out, BlockedOccurrence{
					SourceID:      b.ID,
					Description:   b.Description,
					Start:         s.Start,
					End:           s.End,
					OriginalStart: s.OriginalStart,
					OriginalEnd:   s.OriginalEnd,
				})
			}
		}
	}
	return out
}

// computeGrid derives the visible time-of-day window from the union of the
// operating hours and the loaded appointments. With no appointments the
// operating hours alone decide; with neither, the full day is visible.
func computeGrid(hours []models.OperatingHours, appointments []models.Appointment) GridBounds {
	minM, maxM := -1, -1

	for _, h := range hours {
		if h.Closed {
			continue
		}
		if m, ok := parseMinutes(h.Start); ok && (minM < 0 || m < minM) {
			minM = m
		}
		if m, ok := parseMinutes(h.End); ok && m > maxM {
			maxM = m
		}
	}

	for _, a := range appointments {
		s := a.Start.Hour()*60 + a.Start.Minute()
		e := a.End.Hour()*60 + a.End.Minute()
		if e == 0 && a.End.After(a.Start) {
			e = 24 * 60
		}
		if minM < 0 || s < minM {
			minM = s
		}
		if e > maxM {
			maxM = e
		}
	}

	if minM < 0 || maxM < 0 || maxM <= minM {
		return GridBounds{MinMinute: 0, MaxMinute: 24 * 60}
	}
	return GridBounds{MinMinute: minM, MaxMinute: maxM}
}

func parseMinutes(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
