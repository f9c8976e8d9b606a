package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an attendee. Users are created on first registration by
// email-or-phone lookup; this pathway never sets credentials because
// registering for an activity is not an authentication event.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FirstName string `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`
	Email     string `gorm:"type:varchar(255);index" json:"email"`
	Phone     string `gorm:"type:varchar(50);index" json:"phone"`

	// Relationships
	Registrations []Registration `gorm:"foreignKey:UserID" json:"registrations,omitempty"`
}
