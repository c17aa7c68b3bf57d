package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/Jhol55/agendai-sub000/cmd/models"
	"github.com/Jhol55/agendai-sub000/planner/daterange"
)

// Safety bound on how many occurrences a single slot may yield per query.
const maxOccurrences = 1000

// Slot is a recurrence-expansion input: one interval plus an optional
// recurrence definition.
type Slot struct {
	Start     time.Time
	End       time.Time
	Recurring bool
	Freq      string // daily | weekly | monthly | period
	Interval  int
	DayOfWeek *int // 0 (sunday) .. 6 (saturday), weekly only
}

// Occurrence is one concrete, dated instance produced by expansion.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// FromBlockedSlot adapts a stored blocked-time-slot for expansion.
func FromBlockedSlot(b models.BlockedTimeSlot) Slot {
	return Slot{
		Start:     b.Start,
		End:       b.End,
		Recurring: b.IsRecurring,
		Freq:      b.Freq,
		Interval:  b.Interval,
		DayOfWeek: b.DayOfWeek,
	}
}

// Interval adapts a plain interval (an appointment) for expansion. It goes
// through the non-recurring branch unchanged.
func Interval(start, end time.Time) Slot {
	return Slot{Start: start, End: end}
}

var rruleWeekdays = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Expand returns every occurrence of slot that intersects r, in order.
// The slot is never mutated; missing inputs produce an empty result rather
// than an error. Non-recurring slots (freq "period", empty, or unknown)
// pass through unchanged when they intersect the range.
func Expand(slot Slot, r daterange.Range) []Occurrence {
	if slot.Start.IsZero() || r.From.IsZero() || r.To.IsZero() || r.To.Before(r.From) {
		return nil
	}

	if !slot.Recurring {
		return passthrough(slot, r)
	}

	var freq rrule.Frequency
	switch slot.Freq {
	case models.FreqDaily:
		freq = rrule.DAILY
	case models.FreqWeekly:
		freq = rrule.WEEKLY
	case models.FreqMonthly:
		freq = rrule.MONTHLY
	default:
		// period and anything unrecognized behave as a single interval
		return passthrough(slot, r)
	}

	interval := slot.Interval
	if interval < 1 {
		interval = 1
	}

	opts := rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  slot.Start,
	}
	if freq == rrule.WEEKLY && slot.DayOfWeek != nil {
		d := *slot.DayOfWeek
		if d >= 0 && d <= 6 {
			opts.Byweekday = []rrule.Weekday{rruleWeekdays[d]}
		}
	}

	rule, err := rrule.NewRRule(opts)
	if err != nil {
		return nil
	}

	starts := rule.Between(r.From.Add(-duration(slot)), r.To, true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}

	var out []Occurrence
	for _, s := range starts {
		e := s.Add(duration(slot))
		if e.Before(r.From) || s.After(r.To) {
			continue
		}
		out = append(out, Occurrence{Start: s, End: e})
	}
	return out
}

// ExpandFirst returns only the first occurrence in range, matching the
// legacy at-most-one-per-query behavior of the dashboard.
func ExpandFirst(slot Slot, r daterange.Range) (Occurrence, bool) {
	occ := Expand(slot, r)
	if len(occ) == 0 {
		return Occurrence{}, false
	}
	return occ[0], true
}

func passthrough(slot Slot, r daterange.Range) []Occurrence {
	if slot.End.Before(r.From) || slot.Start.After(r.To) {
		return nil
	}
	return []Occurrence{{Start: slot.Start, End: slot.End}}
}

func duration(slot Slot) time.Duration {
	d := slot.End.Sub(slot.Start)
	if d < 0 {
		return 0
	}
	return d
}
