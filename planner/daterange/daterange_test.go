package daterange

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeViewMode(t *testing.T) {
	base := day(2024, time.March, 4)

	cases := []struct {
		name string
		to   time.Time
		want ViewMode
	}{
		{"same day", base, ViewDay},
		{"six days", base.AddDate(0, 0, 6), ViewWeek},
		{"thirty one days", base.AddDate(0, 0, 31), ViewMonth},
		{"four hundred days", base.AddDate(0, 0, 400), ViewYear},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeViewMode(Range{From: base, To: tc.to})
			if got != tc.want {
				t.Fatalf("ComputeViewMode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLabelsDay(t *testing.T) {
	d := day(2024, time.March, 4)
	labels := Labels(ViewDay, Range{From: d, To: d})

	if len(labels) != 24 {
		t.Fatalf("expected 24 hourly labels, got %d", len(labels))
	}
	if labels[0] != "00:00" || labels[23] != "23:00" {
		t.Fatalf("unexpected boundary labels: %q .. %q", labels[0], labels[23])
	}
}

func TestLabelsWeek(t *testing.T) {
	from := day(2024, time.March, 4) // a Monday
	labels := Labels(ViewWeek, Range{From: from, To: from.AddDate(0, 0, 6)})

	if len(labels) != 7 {
		t.Fatalf("expected 7 labels, got %d", len(labels))
	}
	if labels[0] != "Mon 04" {
		t.Fatalf("unexpected first label %q", labels[0])
	}
	if labels[6] != "Sun 10" {
		t.Fatalf("unexpected last label %q", labels[6])
	}
}

func TestLabelsMonth(t *testing.T) {
	from := day(2024, time.March, 1)
	labels := Labels(ViewMonth, Range{From: from, To: day(2024, time.March, 31)})

	// March 2024 starts on a Friday and spans 5 Monday-based weeks.
	if len(labels) != 5 {
		t.Fatalf("expected 5 week labels, got %d: %v", len(labels), labels)
	}
	if labels[0] != "Week 1" || labels[4] != "Week 5" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestLabelsYear(t *testing.T) {
	from := day(2024, time.January, 1)
	labels := Labels(ViewYear, Range{From: from, To: day(2024, time.December, 31)})

	if len(labels) != 12 {
		t.Fatalf("expected 12 labels, got %d", len(labels))
	}
	if labels[0] != "January" || labels[11] != "December" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestShift(t *testing.T) {
	from := day(2024, time.March, 4)

	dayRange := Shift(Range{From: from, To: from}, ViewDay, 1)
	if !dayRange.From.Equal(day(2024, time.March, 5)) {
		t.Fatalf("day shift: got %v", dayRange.From)
	}

	weekRange := Shift(Range{From: from, To: from.AddDate(0, 0, 6)}, ViewWeek, -1)
	if !weekRange.From.Equal(day(2024, time.February, 26)) {
		t.Fatalf("week shift: got %v", weekRange.From)
	}

	// March has 31 days, so a month page is 31 days wide.
	monthRange := Shift(Range{From: day(2024, time.March, 1), To: day(2024, time.March, 31)}, ViewMonth, 1)
	if !monthRange.From.Equal(day(2024, time.April, 1)) {
		t.Fatalf("month shift: got %v", monthRange.From)
	}
}

func TestShiftToMonth(t *testing.T) {
	r := Range{From: day(2024, time.January, 1), To: day(2024, time.December, 31)}

	june := ShiftToMonth(r, time.June)
	if !june.From.Equal(day(2024, time.June, 1)) {
		t.Fatalf("unexpected from: %v", june.From)
	}
	if !SameDay(june.To, day(2024, time.June, 30)) {
		t.Fatalf("unexpected to: %v", june.To)
	}
}

func TestSlotIndexDay(t *testing.T) {
	d := day(2024, time.March, 4)
	r := Range{From: d, To: d}
	occ := d.Add(10 * time.Hour)

	if !SlotIndex(occ, 10, ViewDay, r) {
		t.Fatal("expected occurrence at 10:00 in column 10")
	}
	if SlotIndex(occ, 9, ViewDay, r) {
		t.Fatal("occurrence at 10:00 must not match column 9")
	}
	if SlotIndex(occ.AddDate(0, 0, 1), 10, ViewDay, r) {
		t.Fatal("next-day occurrence must not match")
	}
}

func TestSlotIndexWeekOffsetFromRangeStart(t *testing.T) {
	// Range starting mid-week: columns follow day offsets from the range
	// start, not calendar weekday positions.
	from := day(2024, time.March, 6) // a Wednesday
	r := Range{From: from, To: from.AddDate(0, 0, 6)}
	occ := from.AddDate(0, 0, 2).Add(9 * time.Hour) // Friday

	if !SlotIndex(occ, 2, ViewWeek, r) {
		t.Fatal("expected Friday occurrence in column 2")
	}
	if SlotIndex(occ, 5, ViewWeek, r) {
		t.Fatal("weekday position must not decide the column")
	}
	if SlotIndex(occ.AddDate(0, 0, 14), 2, ViewWeek, r) {
		t.Fatal("occurrence outside the range must not match")
	}
}

func TestSlotIndexMonth(t *testing.T) {
	r := Range{From: day(2024, time.March, 1), To: day(2024, time.March, 31)}
	occ := day(2024, time.March, 5).Add(8 * time.Hour) // second Monday-based week

	if !SlotIndex(occ, 1, ViewMonth, r) {
		t.Fatalf("expected week-of-month 2 in column 1 (week %d)", WeekOfMonth(occ))
	}
	if SlotIndex(day(2024, time.April, 5), 1, ViewMonth, r) {
		t.Fatal("other month must not match")
	}
}

func TestSlotIndexYear(t *testing.T) {
	r := Range{From: day(2024, time.January, 1), To: day(2024, time.December, 31)}

	if !SlotIndex(day(2024, time.June, 15), 5, ViewYear, r) {
		t.Fatal("expected June in column 5")
	}
	if SlotIndex(day(2025, time.June, 15), 5, ViewYear, r) {
		t.Fatal("other year must not match")
	}
}

func TestWeekOfMonth(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{day(2024, time.March, 1), 1},
		{day(2024, time.March, 3), 1}, // first Sunday still week 1
		{day(2024, time.March, 4), 2}, // first Monday starts week 2
		{day(2024, time.March, 31), 5},
	}
	for _, tc := range cases {
		if got := WeekOfMonth(tc.date); got != tc.want {
			t.Errorf("WeekOfMonth(%v) = %d, want %d", tc.date, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := day(2024, time.March, 4).Add(23 * time.Hour)
	b := day(2024, time.March, 6).Add(1 * time.Hour)
	if got := DaysBetween(a, b); got != 2 {
		t.Fatalf("DaysBetween = %d, want 2", got)
	}
}
