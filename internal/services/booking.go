package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clubbook_echo/internal/models"
)

// BookingService implements capacity-checked registration. All state changes
// of one registration attempt happen inside a single transaction; the
// capacity check and slot increment are a single conditional UPDATE so
// concurrent requests cannot overbook.
type BookingService struct {
	db      *gorm.DB
	gateway PaymentGateway
	mailer  Mailer
	cache   *RedisCache
}

func NewBookingService(db *gorm.DB, gateway PaymentGateway, mailer Mailer, cache *RedisCache) *BookingService {
	return &BookingService{db: db, gateway: gateway, mailer: mailer, cache: cache}
}

// RegisterInput carries the attendee profile and ticket request. One of
// Email/Phone must be set; the handler validates that before calling in.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	TicketCount int
}

// OutcomeState tags the result of a registration attempt so call sites handle
// each branch explicitly.
type OutcomeState string

const (
	OutcomeCompleted       OutcomeState = "completed"
	OutcomePaymentRequired OutcomeState = "payment_required"
)

// RegisterOutcome is the tagged result of Register.
type RegisterOutcome struct {
	State        OutcomeState
	Registration *models.Registration
	User         *models.User
	Payment      *models.Payment

	// Gateway checkout fields, set when payment is required and the organizer
	// has gateway credentials configured.
	GatewayKeyID string
	OrderID      string
	Amount       float64
	Currency     string

	// PaymentPageRef points the caller at the manual payment page when no
	// gateway is configured for the organizer.
	PaymentPageRef string
}

// Register books ticketCount slots of the referenced activity for the given
// attendee. Free and manual-fee activities commit their slot increment
// immediately; gateway-paid activities create a pending payment and defer the
// increment to reconciliation time.
func (s *BookingService) Register(ctx context.Context, activityRef string, in RegisterInput) (*RegisterOutcome, error) {
	if in.TicketCount <= 0 {
		in.TicketCount = 1
	}

	activity, err := s.findOpenActivity(ctx, activityRef)
	if err != nil {
		return nil, err
	}

	outcome := &RegisterOutcome{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Capacity precheck. For the free and manual paths the conditional
		// increment below is authoritative; for the gateway path this read is
		// the only check, since the increment is deferred until the payment
		// settles.
		var fresh models.Activity
		if err := tx.Select("available_slots", "booked_slots").First(&fresh, activity.ID).Error; err != nil {
			return err
		}
		if fresh.BookedSlots+in.TicketCount > fresh.AvailableSlots {
			return ErrCapacityExceeded
		}

		user, err := findOrCreateUser(tx, in)
		if err != nil {
			return err
		}
		outcome.User = user

		reg, err := upsertRegistration(tx, activity.ID, user.ID, in.TicketCount)
		if err != nil {
			return err
		}
		outcome.Registration = reg

		if activity.RegistrationFee == 0 {
			if err := reserveSlots(tx, activity.ID, in.TicketCount); err != nil {
				return err
			}
			outcome.State = OutcomeCompleted
			return nil
		}

		amount := paymentAmount(activity.RegistrationFee, in.TicketCount)
		payment := &models.Payment{
			RegistrationID: reg.ID,
			TicketCount:    in.TicketCount,
			Amount:         amount,
			Currency:       activity.Currency,
			Status:         models.PaymentStatusPending,
			PaymentGateway: models.PaymentGatewayManual,
		}

		organizer := activity.Club.Organizer
		if organizer.GatewayConfigured() {
			payment.PaymentGateway = models.PaymentGatewayRazorpay
			orderID, err := s.gateway.CreateOrder(
				GatewayCredentials{KeyID: organizer.GatewayKeyID, KeySecret: organizer.GatewayKeySecret},
				OrderRequest{
					Amount:   int64(activity.RegistrationFee) * int64(in.TicketCount),
					Currency: activity.Currency,
					Receipt:  reg.Reference,
					Notes: map[string]interface{}{
						"activity_id":     activity.ID,
						"registration_id": reg.ID,
						"user_id":         user.ID,
						"ticket_count":    in.TicketCount,
					},
				})
			if err != nil {
				return &GatewayError{Err: err}
			}
			payment.ProviderOrderID = orderID

			if err := tx.Create(payment).Error; err != nil {
				return err
			}

			outcome.State = OutcomePaymentRequired
			outcome.Payment = payment
			outcome.Amount = amount
			outcome.Currency = activity.Currency
			outcome.GatewayKeyID = organizer.GatewayKeyID
			outcome.OrderID = orderID
			return nil
		}

		// No gateway for this organizer: the booking is pre-confirmed. Slots
		// are reserved now and the pending payment settles out-of-band via the
		// manual payment page.
		if err := reserveSlots(tx, activity.ID, in.TicketCount); err != nil {
			return err
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		outcome.State = OutcomeCompleted
		outcome.Payment = payment
		outcome.Amount = amount
		outcome.Currency = activity.Currency
		outcome.PaymentPageRef = "/pay/" + reg.Reference
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.State == OutcomeCompleted {
		invalidateActivityCache(ctx, s.cache, activity.Slug)
		sendConfirmationEmail(s.mailer, activity, outcome.User, outcome.Registration)
	}
	return outcome, nil
}

// findOpenActivity resolves the activity by slug or numeric id and enforces
// the openness preconditions, each as a distinct failure.
func (s *BookingService) findOpenActivity(ctx context.Context, ref string) (*models.Activity, error) {
	var activity models.Activity
	q := s.db.WithContext(ctx).Preload("Schedules").Preload("Club.Organizer")

	var err error
	if id, convErr := strconv.ParseUint(ref, 10, 64); convErr == nil {
		err = q.First(&activity, uint(id)).Error
	} else {
		err = q.Where("slug = ?", ref).First(&activity).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	if !activity.IsActive {
		return nil, ErrActivityNotFound
	}
	if !activity.IsRegistrationOpen {
		return nil, ErrRegistrationClosed
	}
	if activity.Kind != models.ActivityKindRecurring {
		switch DeriveStatus(&activity, activity.Schedules, time.Now()) {
		case models.ActivityStatusUpcoming, models.ActivityStatusLive:
		default:
			return nil, ErrRegistrationClosed
		}
	}
	return &activity, nil
}

func findOrCreateUser(tx *gorm.DB, in RegisterInput) (*models.User, error) {
	query := tx
	switch {
	case in.Email != "" && in.Phone != "":
		query = tx.Where("email = ? OR phone = ?", in.Email, in.Phone)
	case in.Email != "":
		query = tx.Where("email = ?", in.Email)
	default:
		query = tx.Where("phone = ?", in.Phone)
	}

	var user models.User
	err := query.First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// upsertRegistration finds the user's non-canceled registration for the
// activity and adds tickets to it, or inserts a new one. Re-registration is
// additive, not rejecting.
func upsertRegistration(tx *gorm.DB, activityID, userID uint, tickets int) (*models.Registration, error) {
	var reg models.Registration
	err := tx.Where("activity_id = ? AND user_id = ? AND status <> ?",
		activityID, userID, models.RegistrationStatusCanceled).First(&reg).Error
	if err == nil {
		reg.TicketCount += tickets
		if err := tx.Model(&reg).Update("ticket_count", reg.TicketCount).Error; err != nil {
			return nil, err
		}
		return &reg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reg = models.Registration{
		ActivityID:  activityID,
		UserID:      userID,
		Reference:   uuid.NewString(),
		TicketCount: tickets,
		Status:      models.RegistrationStatusRegistered,
	}
	if err := tx.Create(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// reserveSlots increments booked_slots only while the result still fits in
// available_slots. The condition lives inside the UPDATE itself, so two
// concurrent registrations cannot both pass a stale check.
func reserveSlots(tx *gorm.DB, activityID uint, tickets int) error {
	res := tx.Model(&models.Activity{}).
		Where("id = ? AND booked_slots + ? <= available_slots", activityID, tickets).
		UpdateColumn("booked_slots", gorm.Expr("booked_slots + ?", tickets))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

// paymentAmount converts a fee in minor currency units to the decimal amount
// charged for the requested tickets.
func paymentAmount(registrationFee, tickets int) float64 {
	return float64(registrationFee) / 100 * float64(tickets)
}

// sendConfirmationEmail delivers the booking confirmation without blocking or
// failing the surrounding flow. Mail failures are logged and swallowed.
func sendConfirmationEmail(mailer Mailer, activity *models.Activity, user *models.User, reg *models.Registration) {
	if mailer == nil || user == nil || user.Email == "" {
		return
	}
	subject := fmt.Sprintf("Registration confirmed: %s", activity.Name)
	body := fmt.Sprintf("Hi %s,\n\nYour registration for %s is confirmed.\nTickets: %d\nReference: %s\n\nSee you there!\n",
		user.FirstName, activity.Name, reg.TicketCount, reg.Reference)

	go func() {
		if err := mailer.SendEmail([]string{user.Email}, subject, body); err != nil {
			log.Printf("Failed to send confirmation email for registration %d: %v", reg.ID, err)
		}
	}()
}

const activityListKeyPrefix = "activities:list"

// ActivityListCacheKey keys the cached activity list. Club-filtered lists get
// their own key under the same prefix so prefix invalidation covers both.
func ActivityListCacheKey(club string) string {
	if club == "" {
		return activityListKeyPrefix
	}
	return activityListKeyPrefix + ":" + club
}

// ActivityDetailCacheKey keys the cached detail read of one activity.
func ActivityDetailCacheKey(slug string) string {
	return "activities:detail:" + slug
}

func invalidateActivityCache(ctx context.Context, cache *RedisCache, slug string) {
	if err := cache.Delete(ctx, ActivityDetailCacheKey(slug)); err != nil {
		log.Printf("Failed to invalidate activity detail cache for %s: %v", slug, err)
	}
	if err := cache.DeleteByPrefix(ctx, activityListKeyPrefix); err != nil {
		log.Printf("Failed to invalidate activity list caches: %v", err)
	}
}
