package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentGateway string

const (
	PaymentGatewayRazorpay PaymentGateway = "razorpay"
	PaymentGatewayManual   PaymentGateway = "manual"
)

// PaymentStatus is the state machine of a payment: pending is the only
// non-terminal state, and the pending -> {completed, failed} transition
// happens exactly once through a conditional update.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is the monetary record behind a non-free registration.
// ProviderOrderID holds the gateway order reference and is the key webhooks
// and verify calls reconcile against; ProviderPaymentID records the gateway's
// payment id once one is known.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	RegistrationID uint `gorm:"index" json:"registration_id"`

	// TicketCount is the number of tickets this payment covers. Repeat
	// registrations price a fresh payment for the added tickets only, so
	// reconciliation increments slots by this, never the registration total.
	TicketCount int `gorm:"default:1" json:"ticket_count"`

	Amount   float64 `gorm:"type:decimal(15,2)" json:"amount"`
	Currency string  `gorm:"type:varchar(10)" json:"currency"`

	Status         PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentGateway PaymentGateway `gorm:"type:varchar(50)" json:"payment_gateway"`

	ProviderOrderID   string     `gorm:"type:varchar(100);index" json:"provider_order_id"`
	ProviderPaymentID string     `gorm:"type:varchar(100)" json:"provider_payment_id"`
	PaidAt            *time.Time `json:"paid_at"`

	// Relationships
	Registration Registration `gorm:"foreignKey:RegistrationID" json:"registration,omitempty"`
}
