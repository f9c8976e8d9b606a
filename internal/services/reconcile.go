package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"clubbook_echo/internal/models"
)

// ReconcileService advances payments from pending to a terminal state. The
// gateway webhook and the client verify call are convergent entry points:
// whichever reaches the transition first wins, the other observes the
// terminal row and performs no further mutation.
type ReconcileService struct {
	db      *gorm.DB
	gateway PaymentGateway
	mailer  Mailer
	cache   *RedisCache
}

func NewReconcileService(db *gorm.DB, gateway PaymentGateway, mailer Mailer, cache *RedisCache) *ReconcileService {
	return &ReconcileService{db: db, gateway: gateway, mailer: mailer, cache: cache}
}

// webhookEvent mirrors the fields of the gateway's event envelope that
// reconciliation needs.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type eventClass int

const (
	eventIgnored eventClass = iota
	eventSuccess
	eventFailure
)

func classifyEvent(event string) eventClass {
	switch event {
	case "payment.captured", "order.paid":
		return eventSuccess
	case "payment.failed":
		return eventFailure
	}
	return eventIgnored
}

// WebhookResult reports how a delivery was handled. Applied is true only when
// this delivery performed the state transition, which is what notification
// dispatch is guarded on.
type WebhookResult struct {
	Event   string
	Applied bool
	Payment *models.Payment
}

// HandleWebhook processes one signed gateway delivery. The payment is located
// by the order reference first, then the owning organizer's webhook secret
// verifies the raw body; only then is any state touched. Duplicate deliveries
// for an already-terminal payment are acknowledged as no-ops.
func (s *ReconcileService) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, ErrMalformedPayload
	}
	orderID := event.Payload.Payment.Entity.OrderID
	if orderID == "" {
		return nil, ErrMalformedPayload
	}

	payment, err := s.findPaymentByOrderID(ctx, orderID)
	if err != nil {
		s.recordWebhookEvent(ctx, event.Event, orderID, body, models.WebhookEventStatusRejected)
		return nil, err
	}

	organizer := payment.Registration.Activity.Club.Organizer
	if organizer.WebhookSecret == "" {
		return nil, ErrWebhookSecretMissing
	}
	if signature == "" || !s.gateway.VerifyWebhookSignature(body, signature, organizer.WebhookSecret) {
		s.recordWebhookEvent(ctx, event.Event, orderID, body, models.WebhookEventStatusRejected)
		return nil, ErrInvalidSignature
	}

	result := &WebhookResult{Event: event.Event, Payment: payment}
	switch classifyEvent(event.Event) {
	case eventSuccess:
		applied, err := s.applySuccess(ctx, payment, event.Payload.Payment.Entity.ID)
		if err != nil {
			return nil, err
		}
		result.Applied = applied
		if applied {
			s.afterSuccess(ctx, payment)
			s.recordWebhookEvent(ctx, event.Event, orderID, body, models.WebhookEventStatusApplied)
		} else {
			s.recordWebhookEvent(ctx, event.Event, orderID, body, models.WebhookEventStatusDuplicate)
		}
	case eventFailure:
		applied, err := s.applyFailure(ctx, payment)
		if err != nil {
			return nil, err
		}
		result.Applied = applied
		status := models.WebhookEventStatusDuplicate
		if applied {
			status = models.WebhookEventStatusApplied
		}
		s.recordWebhookEvent(ctx, event.Event, orderID, body, status)
	default:
		s.recordWebhookEvent(ctx, event.Event, orderID, body, models.WebhookEventStatusIgnored)
	}
	return result, nil
}

// VerifyResult is the tagged outcome of a client verify call.
type VerifyResult struct {
	Applied          bool
	AlreadyCompleted bool
	Payment          *models.Payment
}

// VerifyPayment is the synchronous client-side counterpart of the success
// webhook. The signature covers "orderID|paymentID" under the organizer's key
// secret (not the webhook secret). An already-completed payment is a success
// variant, not an error.
func (s *ReconcileService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*VerifyResult, error) {
	payment, err := s.findPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	organizer := payment.Registration.Activity.Club.Organizer
	if organizer.GatewayKeySecret == "" {
		return nil, ErrKeySecretMissing
	}
	if !s.gateway.VerifyPaymentSignature(orderID, paymentID, signature, organizer.GatewayKeySecret) {
		return nil, ErrInvalidSignature
	}

	if payment.Status == models.PaymentStatusCompleted {
		return &VerifyResult{AlreadyCompleted: true, Payment: payment}, nil
	}

	applied, err := s.applySuccess(ctx, payment, paymentID)
	if err != nil {
		return nil, err
	}
	if applied {
		payment.Status = models.PaymentStatusCompleted
		s.afterSuccess(ctx, payment)
	} else {
		// Lost the race against the webhook; report the state that won.
		var fresh models.Payment
		if err := s.db.WithContext(ctx).Select("status").First(&fresh, payment.ID).Error; err == nil {
			payment.Status = fresh.Status
		}
	}
	return &VerifyResult{
		Applied:          applied,
		AlreadyCompleted: !applied && payment.Status == models.PaymentStatusCompleted,
		Payment:          payment,
	}, nil
}

// applySuccess performs the single-shot pending -> completed transition and,
// when it wins, increments the activity's booked slots by the ticket count
// this payment covers. Losing the race is not an error: the row is already
// terminal.
func (s *ReconcileService) applySuccess(ctx context.Context, payment *models.Payment, providerPaymentID string) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":  models.PaymentStatusCompleted,
			"paid_at": now,
		}
		if providerPaymentID != "" {
			updates["provider_payment_id"] = providerPaymentID
		}
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// already terminal; duplicate delivery or lost race
			return nil
		}
		applied = true

		// Slots for gateway-paid activities are reserved here, not at booking
		// time. Capacity was validated when the registration was taken. The
		// increment is the payment's own ticket count: a repeat registration
		// settles each of its payments separately.
		reg := payment.Registration
		res = tx.Model(&models.Activity{}).
			Where("id = ?", reg.ActivityID).
			UpdateColumn("booked_slots", gorm.Expr("booked_slots + ?", payment.TicketCount))
		if res.Error != nil {
			return res.Error
		}

		return tx.Model(&models.Registration{}).
			Where("id = ?", reg.ID).
			Update("updated_at", now).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// applyFailure performs the single-shot pending -> failed transition and
// cancels the registration. Booked slots are untouched: none were reserved
// before payment.
func (s *ReconcileService) applyFailure(ctx context.Context, payment *models.Payment) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusFailed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		return tx.Model(&models.Registration{}).
			Where("id = ?", payment.RegistrationID).
			Update("status", models.RegistrationStatusCanceled).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *ReconcileService) findPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Preload("Registration").
		Preload("Registration.User").
		Preload("Registration.Activity").
		Preload("Registration.Activity.Club").
		Preload("Registration.Activity.Club.Organizer").
		Where("provider_order_id = ?", orderID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *ReconcileService) afterSuccess(ctx context.Context, payment *models.Payment) {
	activity := payment.Registration.Activity
	invalidateActivityCache(ctx, s.cache, activity.Slug)
	sendConfirmationEmail(s.mailer, &activity, &payment.Registration.User, &payment.Registration)
}

// recordWebhookEvent writes the audit row for a delivery. Best-effort: audit
// failures are logged, never surfaced.
func (s *ReconcileService) recordWebhookEvent(ctx context.Context, event, orderID string, body []byte, status models.WebhookEventStatus) {
	row := models.WebhookEvent{
		PaymentGateway: models.PaymentGatewayRazorpay,
		EventType:      event,
		OrderID:        orderID,
		Status:         status,
		Payload:        json.RawMessage(body),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("Failed to record webhook event for order %s: %v", orderID, err)
	}
}
