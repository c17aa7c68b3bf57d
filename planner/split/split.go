package split

import (
	"time"

	"github.com/Jhol55/agendai-sub000/cmd/models"
	"github.com/Jhol55/agendai-sub000/planner/daterange"
)

// Slot is a concrete time interval. OriginalStart/OriginalEnd are set on
// sub-slots produced by splitting a multi-day span and point back at the
// unsplit bounds.
type Slot struct {
	Start         time.Time
	End           time.Time
	OriginalStart *time.Time
	OriginalEnd   *time.Time
}

// DayBounds are per-day clipping limits as HH:MM strings. An empty string
// means no clipping on that side beyond the day boundary.
type DayBounds struct {
	Min string
	Max string
}

// BoundsFunc supplies the clipping bounds for a given calendar day.
// A nil BoundsFunc disables clipping entirely.
type BoundsFunc func(day time.Time) DayBounds

// BoundsFromOperatingHours builds a BoundsFunc from per-weekday operating
// hours. Closed or missing weekdays yield no clipping.
func BoundsFromOperatingHours(hours []models.OperatingHours) BoundsFunc {
	byDay := make(map[string]models.OperatingHours, len(hours))
	for _, h := range hours {
		byDay[h.Weekday] = h
	}
	return func(day time.Time) DayBounds {
		h, ok := byDay[models.WeekdayKey(day.Weekday())]
		if !ok || h.Closed {
			return DayBounds{}
		}
		return DayBounds{Min: h.Start, Max: h.End}
	}
}

// AcrossDays splits a slot spanning multiple calendar days into one
// sub-slot per day, clipped to the supplied bounds. A slot confined to a
// single day (including start == end) is returned unchanged as a single
// sub-slot, so the operation is idempotent.
func AcrossDays(s Slot, bounds BoundsFunc) []Slot {
	if daterange.SameDay(s.Start, s.End) {
		return []Slot{s}
	}

	origStart, origEnd := s.Start, s.End
	var out []Slot

	// First day: from the original start, up to end of day or the day's max.
	out = append(out, Slot{
		Start:         s.Start,
		End:           clipMax(daterange.EndOfDay(s.Start), s.Start, bounds),
		OriginalStart: &origStart,
		OriginalEnd:   &origEnd,
	})

	// Full days strictly between start day and end day.
	lastDay := daterange.StartOfDay(s.End)
	for day := daterange.StartOfDay(s.Start).AddDate(0, 0, 1); day.Before(lastDay); day = day.AddDate(0, 0, 1) {
		out = append(out, Slot{
			Start:         clipMin(day, day, bounds),
			End:           clipMax(daterange.EndOfDay(day), day, bounds),
			OriginalStart: &origStart,
			OriginalEnd:   &origEnd,
		})
	}

	// Final day: from start of day (or the day's min) to the original end.
	out = append(out, Slot{
		Start:         clipMin(lastDay, lastDay, bounds),
		End:           clipMax(s.End, lastDay, bounds),
		OriginalStart: &origStart,
		OriginalEnd:   &origEnd,
	})

	return out
}

func clipMin(t, day time.Time, bounds BoundsFunc) time.Time {
	if bounds == nil {
		return t
	}
	at, ok := atTime(day, bounds(day).Min)
	if ok && at.After(t) {
		return at
	}
	return t
}

func clipMax(t, day time.Time, bounds BoundsFunc) time.Time {
	if bounds == nil {
		return t
	}
	at, ok := atTime(day, bounds(day).Max)
	if ok && at.Before(t) {
		return at
	}
	return t
}

// atTime places an HH:MM time-of-day onto the given calendar day.
func atTime(day time.Time, hhmm string) (time.Time, bool) {
	if hhmm == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), true
}
