package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduleDay is a lowercase weekday name as stored on schedule rows.
type ScheduleDay string

const (
	ScheduleDaySunday    ScheduleDay = "sunday"
	ScheduleDayMonday    ScheduleDay = "monday"
	ScheduleDayTuesday   ScheduleDay = "tuesday"
	ScheduleDayWednesday ScheduleDay = "wednesday"
	ScheduleDayThursday  ScheduleDay = "thursday"
	ScheduleDayFriday    ScheduleDay = "friday"
	ScheduleDaySaturday  ScheduleDay = "saturday"
)

var scheduleDays = map[ScheduleDay]time.Weekday{
	ScheduleDaySunday:    time.Sunday,
	ScheduleDayMonday:    time.Monday,
	ScheduleDayTuesday:   time.Tuesday,
	ScheduleDayWednesday: time.Wednesday,
	ScheduleDayThursday:  time.Thursday,
	ScheduleDayFriday:    time.Friday,
	ScheduleDaySaturday:  time.Saturday,
}

// Weekday maps the stored day name to a time.Weekday.
func (d ScheduleDay) Weekday() (time.Weekday, bool) {
	wd, ok := scheduleDays[d]
	return wd, ok
}

// Schedule is one weekly slot of a recurring activity. StartTime and EndTime
// are stored as full timestamps but only hour/minute/second are meaningful.
type Schedule struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ActivityID uint        `gorm:"index" json:"activity_id"`
	DayOfWeek  ScheduleDay `gorm:"type:varchar(10)" json:"day_of_week"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
}
