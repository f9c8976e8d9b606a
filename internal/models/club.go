package models

import (
	"time"

	"gorm.io/gorm"
)

// Club groups activities under one organizer.
type Club struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrganizerID uint   `gorm:"index" json:"organizer_id"`
	Name        string `gorm:"type:varchar(255)" json:"name"`
	Slug        string `gorm:"type:varchar(255);uniqueIndex" json:"slug"`

	// Relationships
	Organizer  Organizer  `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	Activities []Activity `gorm:"foreignKey:ClubID" json:"activities,omitempty"`
}
