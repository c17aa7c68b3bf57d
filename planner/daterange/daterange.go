package daterange

import (
	"fmt"
	"time"
)

// ViewMode is the calendar granularity. It is derived from the selected
// range's span, never selected directly, and must be recomputed whenever
// the range changes.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
	ViewYear  ViewMode = "year"
)

// Range is an inclusive date-time window.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range, boundaries included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// ComputeViewMode classifies a range by its span in days.
func ComputeViewMode(r Range) ViewMode {
	days := r.To.Sub(r.From).Hours() / 24
	switch {
	case days < 1:
		return ViewDay
	case days < 7:
		return ViewWeek
	case days <= 31:
		return ViewMonth
	default:
		return ViewYear
	}
}

// Labels returns one label per grid column for the given view mode.
func Labels(mode ViewMode, r Range) []string {
	var labels []string

	switch mode {
	case ViewDay:
		end := EndOfDay(r.To)
		for t := StartOfDay(r.From); t.Before(end); t = t.Add(time.Hour) {
			labels = append(labels, t.Format("15:04"))
		}
	case ViewWeek:
		last := StartOfDay(r.To)
		for d := StartOfDay(r.From); !d.After(last); d = d.AddDate(0, 0, 1) {
			labels = append(labels, d.Format("Mon 02"))
		}
	case ViewMonth:
		first := time.Date(r.From.Year(), r.From.Month(), 1, 0, 0, 0, 0, r.From.Location())
		last := first.AddDate(0, 1, -1)
		for w := 1; w <= WeekOfMonth(last); w++ {
			labels = append(labels, fmt.Sprintf("Week %d", w))
		}
	case ViewYear:
		for m := time.January; m <= time.December; m++ {
			labels = append(labels, m.String())
		}
	}

	return labels
}

// Shift moves the range forward or back by exactly one page. Direction is
// +1 or -1. Year view pages by explicit month selection instead, see
// ShiftToMonth.
func Shift(r Range, mode ViewMode, direction int) Range {
	switch mode {
	case ViewDay:
		return Range{From: r.From.AddDate(0, 0, direction), To: r.To.AddDate(0, 0, direction)}
	case ViewWeek:
		return Range{From: r.From.AddDate(0, 0, 7*direction), To: r.To.AddDate(0, 0, 7*direction)}
	case ViewMonth:
		days := DaysInMonth(r.From)
		return Range{From: r.From.AddDate(0, 0, days*direction), To: r.To.AddDate(0, 0, days*direction)}
	}
	return r
}

// ShiftToMonth jumps a year-view range to a specific month of the range's
// year, returning that month's full span.
func ShiftToMonth(r Range, month time.Month) Range {
	first := time.Date(r.From.Year(), month, 1, 0, 0, 0, 0, r.From.Location())
	return Range{From: first, To: EndOfDay(first.AddDate(0, 1, -1))}
}

// SlotIndex reports whether an occurrence starting at start belongs in grid
// column column (zero-based) for the given view mode and range.
//
// The week mapping is an explicit whole-day offset from the range start, so
// it holds for ranges that do not begin on a canonical week boundary.
func SlotIndex(start time.Time, column int, mode ViewMode, r Range) bool {
	switch mode {
	case ViewDay:
		return start.Hour() == column && SameDay(start, r.From)
	case ViewWeek:
		if start.Before(StartOfDay(r.From)) || start.After(EndOfDay(r.To)) {
			return false
		}
		return DaysBetween(r.From, start) == column
	case ViewMonth:
		if start.Year() != r.From.Year() || start.Month() != r.From.Month() {
			return false
		}
		return WeekOfMonth(start)-1 == column
	case ViewYear:
		return start.Year() == r.From.Year() && int(start.Month())-1 == column
	}
	return false
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween counts whole calendar days from a's day to b's day.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1).Day()
}

// WeekOfMonth returns the 1-based week-of-month of t, with weeks starting
// on Monday.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := (int(first.Weekday()) + 6) % 7
	return (offset+t.Day()-1)/7 + 1
}
