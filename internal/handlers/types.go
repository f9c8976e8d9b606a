package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"clubbook_echo/internal/models"
	"clubbook_echo/internal/services"
)

// CustomValidator plugs go-playground/validator into Echo's Validate hook.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// RegisterRequest is the booking endpoint body. One of email/phone is
// required; that cross-field rule is checked in the handler.
type RegisterRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,min=7,max=20"`
	TicketCount int    `json:"ticket_count" validate:"omitempty,min=1,max=4"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type ScheduleEntryRequest struct {
	DayOfWeek string `json:"day_of_week" validate:"required,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	StartTime string `json:"start_time" validate:"required"` // "15:04"
	EndTime   string `json:"end_time" validate:"required"`
}

type CreateActivityRequest struct {
	ClubSlug        string                 `json:"club_slug" validate:"required"`
	Name            string                 `json:"name" validate:"required"`
	Slug            string                 `json:"slug" validate:"required"`
	Description     string                 `json:"description"`
	Kind            string                 `json:"kind" validate:"required,oneof=onetime recurring"`
	StartDateTime   *time.Time             `json:"start_date_time"`
	EndDateTime     *time.Time             `json:"end_date_time"`
	AvailableSlots  int                    `json:"available_slots" validate:"required,min=1"`
	RegistrationFee int                    `json:"registration_fee" validate:"min=0"`
	Currency        string                 `json:"currency"`
	Schedules       []ScheduleEntryRequest `json:"schedules" validate:"dive"`
}

// RegistrationResponse is the registration slice of a booking response.
type RegistrationResponse struct {
	ID          uint                      `json:"id"`
	Reference   string                    `json:"reference"`
	TicketCount int                       `json:"ticket_count"`
	Status      models.RegistrationStatus `json:"status"`
}

// RegisterResponse is the tagged booking outcome returned to the caller.
type RegisterResponse struct {
	State        services.OutcomeState `json:"state"`
	Registration RegistrationResponse  `json:"registration"`

	Amount         float64 `json:"amount,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	OrderID        string  `json:"order_id,omitempty"`
	GatewayKeyID   string  `json:"gateway_key_id,omitempty"`
	PaymentPageRef string  `json:"payment_page,omitempty"`
}

// ActivityResponse is an activity read with its derived status.
type ActivityResponse struct {
	ID                 uint                  `json:"id"`
	Name               string                `json:"name"`
	Slug               string                `json:"slug"`
	Description        string                `json:"description,omitempty"`
	Kind               models.ActivityKind   `json:"kind"`
	Status             models.ActivityStatus `json:"status"`
	StartDateTime      *time.Time            `json:"start_date_time,omitempty"`
	EndDateTime        *time.Time            `json:"end_date_time,omitempty"`
	NextOccurrence     *time.Time            `json:"next_occurrence,omitempty"`
	AvailableSlots     int                   `json:"available_slots"`
	BookedSlots        int                   `json:"booked_slots"`
	RegistrationFee    int                   `json:"registration_fee"`
	Currency           string                `json:"currency"`
	IsRegistrationOpen bool                  `json:"is_registration_open"`
	Schedules          []models.Schedule     `json:"schedules,omitempty"`
}

func newActivityResponse(a models.Activity, now time.Time) ActivityResponse {
	return ActivityResponse{
		ID:                 a.ID,
		Name:               a.Name,
		Slug:               a.Slug,
		Description:        a.Description,
		Kind:               a.Kind,
		Status:             services.DeriveStatus(&a, a.Schedules, now),
		StartDateTime:      a.StartDateTime,
		EndDateTime:        a.EndDateTime,
		NextOccurrence:     a.NextOccurrence(a.Schedules, now),
		AvailableSlots:     a.AvailableSlots,
		BookedSlots:        a.BookedSlots,
		RegistrationFee:    a.RegistrationFee,
		Currency:           a.Currency,
		IsRegistrationOpen: a.IsRegistrationOpen,
		Schedules:          a.Schedules,
	}
}
