package services

import (
	"time"

	"clubbook_echo/internal/models"
)

// DeriveStatus computes the display status of an activity at a given instant.
// It is pure and cheap: it is called on every list and detail read and is the
// sole source of truth for recurring activity status.
//
// One-time activities compare now against their absolute window, except that
// a stored "canceled" status is authoritative and bypasses derivation.
// Recurring activities compare now against today's schedule window and then
// scan the remaining days of the current week (Sunday through Saturday,
// without wrapping into next week).
func DeriveStatus(a *models.Activity, schedules []models.Schedule, now time.Time) models.ActivityStatus {
	if a.Kind != models.ActivityKindRecurring {
		return deriveOneTimeStatus(a, now)
	}
	return deriveRecurringStatus(schedules, now)
}

func deriveOneTimeStatus(a *models.Activity, now time.Time) models.ActivityStatus {
	if a.Status == models.ActivityStatusCanceled {
		return models.ActivityStatusCanceled
	}
	if a.StartDateTime == nil || a.EndDateTime == nil {
		return a.Status
	}
	switch {
	case now.Before(*a.StartDateTime):
		return models.ActivityStatusUpcoming
	case now.After(*a.EndDateTime):
		return models.ActivityStatusCompleted
	default:
		return models.ActivityStatusLive
	}
}

func deriveRecurringStatus(schedules []models.Schedule, now time.Time) models.ActivityStatus {
	today := now.Weekday()

	upcomingToday := false
	for _, s := range schedules {
		wd, ok := s.DayOfWeek.Weekday()
		if !ok || wd != today {
			continue
		}
		start := clockOn(now, s.StartTime)
		end := clockOn(now, s.EndTime)
		if !now.Before(start) && !now.After(end) {
			return models.ActivityStatusLive
		}
		if now.Before(start) {
			upcomingToday = true
		}
	}
	if upcomingToday {
		return models.ActivityStatusUpcoming
	}

	// Any entry later this week keeps the activity upcoming; past Saturday
	// there is nothing left and the week counts as completed.
	for d := today + 1; d <= time.Saturday; d++ {
		for _, s := range schedules {
			if wd, ok := s.DayOfWeek.Weekday(); ok && wd == d {
				return models.ActivityStatusUpcoming
			}
		}
	}
	return models.ActivityStatusCompleted
}

// clockOn projects the time-of-day of clock onto the date of day.
func clockOn(day time.Time, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location())
}
