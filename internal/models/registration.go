package models

import (
	"time"

	"gorm.io/gorm"
)

// RegistrationStatus represents the lifecycle of a registration.
type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "registered"
	RegistrationStatusCanceled   RegistrationStatus = "canceled"
	RegistrationStatusAttended   RegistrationStatus = "attended"
)

// Registration is a user's claim on one or more slots of an activity. At most
// one non-canceled registration exists per (activity, user) pair; repeat
// registrations add tickets to the existing row instead of creating a new one.
type Registration struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ActivityID uint `gorm:"index" json:"activity_id"`
	UserID     uint `gorm:"index" json:"user_id"`

	// Reference is the public identifier used in manual payment page links.
	Reference   string             `gorm:"type:varchar(36);uniqueIndex" json:"reference"`
	TicketCount int                `gorm:"default:1" json:"ticket_count"`
	Status      RegistrationStatus `gorm:"type:varchar(20);default:'registered'" json:"status"`

	// Relationships
	Activity Activity  `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Payments []Payment `gorm:"foreignKey:RegistrationID" json:"payments,omitempty"`
}
