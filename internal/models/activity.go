package models

import (
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// ActivityKind distinguishes a one-time event from a weekly recurring one.
type ActivityKind string

const (
	ActivityKindOneTime   ActivityKind = "onetime"
	ActivityKindRecurring ActivityKind = "recurring"
)

// ActivityStatus is the display status of an activity.
type ActivityStatus string

const (
	ActivityStatusUpcoming  ActivityStatus = "upcoming"
	ActivityStatusLive      ActivityStatus = "live"
	ActivityStatusCompleted ActivityStatus = "completed"
	ActivityStatusCanceled  ActivityStatus = "canceled"
)

// Activity is a bookable event. One-time activities carry an absolute
// [StartDateTime, EndDateTime] window; recurring activities carry weekly
// Schedule entries instead. The stored Status field is meaningful for one-time
// activities only (and a stored "canceled" always wins over derivation);
// recurring activity status is derived on every read.
type Activity struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ClubID      uint   `gorm:"index" json:"club_id"`
	Name        string `gorm:"type:varchar(255)" json:"name"`
	Slug        string `gorm:"type:varchar(255);uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Kind          ActivityKind   `gorm:"type:varchar(20);default:'onetime'" json:"kind"`
	StartDateTime *time.Time     `json:"start_date_time"`
	EndDateTime   *time.Time     `json:"end_date_time"`
	Status        ActivityStatus `gorm:"type:varchar(20);default:'upcoming'" json:"status"`

	AvailableSlots int `json:"available_slots"`
	BookedSlots    int `gorm:"default:0" json:"booked_slots"`

	// RegistrationFee is in minor currency units; 0 means free.
	RegistrationFee int    `gorm:"default:0" json:"registration_fee"`
	Currency        string `gorm:"type:varchar(10);default:'INR'" json:"currency"`

	IsActive           bool `gorm:"default:true" json:"is_active"`
	IsRegistrationOpen bool `gorm:"default:true" json:"is_registration_open"`

	// Relationships
	Club          Club           `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	Schedules     []Schedule     `gorm:"foreignKey:ActivityID" json:"schedules,omitempty"`
	Registrations []Registration `gorm:"foreignKey:ActivityID" json:"registrations,omitempty"`
}

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// NextOccurrence calculates the next time this activity takes place after now.
// For one-time activities that is simply the start time if it is still ahead;
// for recurring activities each schedule entry is expanded as a weekly rule
// and the earliest future occurrence wins.
func (a Activity) NextOccurrence(schedules []Schedule, now time.Time) *time.Time {
	if a.Kind != ActivityKindRecurring {
		if a.StartDateTime != nil && a.StartDateTime.After(now) {
			return a.StartDateTime
		}
		return nil
	}

	var next *time.Time
	for _, s := range schedules {
		wd, ok := s.DayOfWeek.Weekday()
		if !ok {
			continue
		}
		// Anchor the rule a week back so the first occurrence is never ahead
		// of the window we query.
		anchor := now.AddDate(0, 0, -7)
		dtstart := time.Date(anchor.Year(), anchor.Month(), anchor.Day(),
			s.StartTime.Hour(), s.StartTime.Minute(), s.StartTime.Second(), 0, now.Location())

		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
			Dtstart:   dtstart,
		})
		if err != nil {
			continue
		}
		occ := rule.After(now, true)
		if occ.IsZero() {
			continue
		}
		if next == nil || occ.Before(*next) {
			o := occ
			next = &o
		}
	}
	return next
}
