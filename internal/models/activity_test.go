package models

import (
	"testing"
	"time"
)

func TestNextOccurrenceOneTime(t *testing.T) {
	now := time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC)
	start := now.Add(48 * time.Hour)

	a := Activity{Kind: ActivityKindOneTime, StartDateTime: &start}
	if got := a.NextOccurrence(nil, now); got == nil || !got.Equal(start) {
		t.Errorf("NextOccurrence() = %v; want %v", got, start)
	}

	past := now.Add(-48 * time.Hour)
	a = Activity{Kind: ActivityKindOneTime, StartDateTime: &past}
	if got := a.NextOccurrence(nil, now); got != nil {
		t.Errorf("NextOccurrence() = %v; want nil for elapsed activity", got)
	}
}

func TestNextOccurrenceRecurring(t *testing.T) {
	// 2026-01-08 is a Thursday.
	now := time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC)
	clock := func(h, m int) time.Time {
		return time.Date(2000, 1, 1, h, m, 0, 0, time.UTC)
	}

	a := Activity{Kind: ActivityKindRecurring}
	schedules := []Schedule{
		{DayOfWeek: ScheduleDayMonday, StartTime: clock(10, 0), EndTime: clock(12, 0)},
		{DayOfWeek: ScheduleDaySaturday, StartTime: clock(9, 0), EndTime: clock(11, 0)},
	}

	got := a.NextOccurrence(schedules, now)
	if got == nil {
		t.Fatal("NextOccurrence() = nil; want the upcoming Saturday")
	}
	// Saturday 2026-01-10 09:00 comes before Monday 2026-01-12 10:00.
	want := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence() = %v; want %v", got, want)
	}
}
