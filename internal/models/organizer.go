package models

import (
	"time"

	"gorm.io/gorm"
)

// Organizer is the tenant of the system. It owns clubs (and through them
// activities) and holds its own payment gateway credentials, so reconciliation
// always resolves secrets through the owning organizer.
type Organizer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name  string `gorm:"type:varchar(255)" json:"name"`
	Email string `gorm:"type:varchar(255);uniqueIndex" json:"email"`

	// Gateway credentials. KeyID/KeySecret select the gateway payment path
	// when both are present; WebhookSecret signs incoming webhook deliveries.
	GatewayKeyID     string `gorm:"type:varchar(100)" json:"-"`
	GatewayKeySecret string `gorm:"type:varchar(100)" json:"-"`
	WebhookSecret    string `gorm:"type:varchar(100)" json:"-"`

	// Relationships
	Clubs []Club `gorm:"foreignKey:OrganizerID" json:"clubs,omitempty"`
}

// GatewayConfigured reports whether paid registrations for this organizer go
// through the payment gateway rather than the manual payment page.
func (o Organizer) GatewayConfigured() bool {
	return o.GatewayKeyID != "" && o.GatewayKeySecret != ""
}
