package services

import (
	"testing"
	"time"

	"clubbook_echo/internal/models"
)

func ptr(t time.Time) *time.Time { return &t }

// 2026-01-05 is a Monday.
func clock(day time.Time, h, m int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
}

func TestDeriveStatusOneTime(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		activity models.Activity
		expected models.ActivityStatus
	}{
		{
			name: "window around now is live",
			activity: models.Activity{
				Kind:          models.ActivityKindOneTime,
				StartDateTime: ptr(now.Add(-time.Hour)),
				EndDateTime:   ptr(now.Add(time.Hour)),
			},
			expected: models.ActivityStatusLive,
		},
		{
			name: "elapsed window is completed",
			activity: models.Activity{
				Kind:          models.ActivityKindOneTime,
				StartDateTime: ptr(now.Add(-3 * time.Hour)),
				EndDateTime:   ptr(now.Add(-time.Hour)),
			},
			expected: models.ActivityStatusCompleted,
		},
		{
			name: "future window is upcoming",
			activity: models.Activity{
				Kind:          models.ActivityKindOneTime,
				StartDateTime: ptr(now.Add(time.Hour)),
				EndDateTime:   ptr(now.Add(3 * time.Hour)),
			},
			expected: models.ActivityStatusUpcoming,
		},
		{
			name: "start boundary is live",
			activity: models.Activity{
				Kind:          models.ActivityKindOneTime,
				StartDateTime: ptr(now),
				EndDateTime:   ptr(now.Add(time.Hour)),
			},
			expected: models.ActivityStatusLive,
		},
		{
			name: "stored canceled bypasses derivation",
			activity: models.Activity{
				Kind:          models.ActivityKindOneTime,
				Status:        models.ActivityStatusCanceled,
				StartDateTime: ptr(now.Add(-time.Hour)),
				EndDateTime:   ptr(now.Add(time.Hour)),
			},
			expected: models.ActivityStatusCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(&tt.activity, nil, now)
			if got != tt.expected {
				t.Errorf("DeriveStatus() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestDeriveStatusRecurring(t *testing.T) {
	activity := models.Activity{Kind: models.ActivityKindRecurring}
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	schedules := []models.Schedule{
		{DayOfWeek: models.ScheduleDayMonday, StartTime: clock(base, 10, 0), EndTime: clock(base, 12, 0)},
		{DayOfWeek: models.ScheduleDayWednesday, StartTime: clock(base, 14, 0), EndTime: clock(base, 16, 0)},
	}

	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)
	thursday := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		expected models.ActivityStatus
	}{
		{"inside monday window is live", clock(monday, 11, 0), models.ActivityStatusLive},
		{"window end boundary is live", clock(monday, 12, 0), models.ActivityStatusLive},
		{"before monday window is upcoming", clock(monday, 9, 0), models.ActivityStatusUpcoming},
		{"between windows is upcoming", clock(monday, 13, 0), models.ActivityStatusUpcoming},
		{"after last window of the week is completed", clock(wednesday, 16, 30), models.ActivityStatusCompleted},
		{"thursday has nothing left this week", clock(thursday, 9, 0), models.ActivityStatusCompleted},
		{"sunday sees the whole week ahead", clock(sunday, 9, 0), models.ActivityStatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(&activity, schedules, tt.now)
			if got != tt.expected {
				t.Errorf("DeriveStatus(%s) = %q; want %q", tt.now.Format(time.RFC1123), got, tt.expected)
			}
		})
	}
}
