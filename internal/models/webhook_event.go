package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// WebhookEventStatus records how a gateway delivery was handled.
type WebhookEventStatus string

const (
	WebhookEventStatusApplied   WebhookEventStatus = "applied"
	WebhookEventStatusDuplicate WebhookEventStatus = "duplicate"
	WebhookEventStatusIgnored   WebhookEventStatus = "ignored"
	WebhookEventStatusRejected  WebhookEventStatus = "rejected"
)

// WebhookEvent is an audit row written for every webhook delivery so that
// rejected or unmatched events can be investigated manually.
type WebhookEvent struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	PaymentGateway PaymentGateway     `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	EventType      string             `gorm:"type:varchar(100)" json:"event_type"`
	OrderID        string             `gorm:"type:varchar(100);index" json:"order_id"`
	Status         WebhookEventStatus `gorm:"type:varchar(20)" json:"status"`
	Payload        json.RawMessage    `gorm:"type:jsonb" json:"payload"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"deleted_at,omitempty"`
}
