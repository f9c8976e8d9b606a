package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubbook_echo/internal/models"
	"clubbook_echo/internal/services"
)

type ActivityHandler struct {
	db      *gorm.DB
	cache   *services.RedisCache
	booking *services.BookingService
}

func NewActivityHandler(db *gorm.DB, cache *services.RedisCache, booking *services.BookingService) *ActivityHandler {
	return &ActivityHandler{db: db, cache: cache, booking: booking}
}

// ListActivities returns active activities with derived statuses, optionally
// filtered by club slug. The DB fetch is cached briefly; status derivation
// always runs against the current clock.
func (h *ActivityHandler) ListActivities(c echo.Context) error {
	ctx := c.Request().Context()
	club := c.QueryParam("club")

	key := services.ActivityListCacheKey(club)
	activities, err := services.GetOrSet(h.cache, ctx, key, 30*time.Second, func() ([]models.Activity, error) {
		q := h.db.WithContext(ctx).Preload("Schedules").Where("activities.is_active = ?", true)
		if club != "" {
			q = q.Joins("JOIN clubs ON clubs.id = activities.club_id").Where("clubs.slug = ?", club)
		}
		var out []models.Activity
		if err := q.Order("activities.id ASC").Find(&out).Error; err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		log.Printf("Failed to list activities: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activities")
	}

	now := time.Now()
	resp := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, newActivityResponse(a, now))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetActivity returns one activity by slug with derived status and, for
// recurring activities, the next occurrence.
func (h *ActivityHandler) GetActivity(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	activity, err := services.GetOrSet(h.cache, ctx, services.ActivityDetailCacheKey(slug), time.Minute, func() (models.Activity, error) {
		var a models.Activity
		err := h.db.WithContext(ctx).Preload("Schedules").
			Where("slug = ? AND is_active = ?", slug, true).First(&a).Error
		return a, err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		}
		log.Printf("Failed to fetch activity %s: %v", slug, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activity")
	}

	return c.JSON(http.StatusOK, newActivityResponse(activity, time.Now()))
}

// CreateActivity creates an activity under a club. Operator endpoint, guarded
// by the shared-secret middleware.
func (h *ActivityHandler) CreateActivity(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	kind := models.ActivityKind(req.Kind)
	if kind == models.ActivityKindOneTime && (req.StartDateTime == nil || req.EndDateTime == nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "One-time activities require start_date_time and end_date_time")
	}
	if kind == models.ActivityKindRecurring && len(req.Schedules) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Recurring activities require at least one schedule entry")
	}

	var clubRec models.Club
	if err := h.db.WithContext(ctx).Where("slug = ?", req.ClubSlug).First(&clubRec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Club not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch club")
	}

	schedules, err := parseSchedules(req.Schedules)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	activity := models.Activity{
		ClubID:             clubRec.ID,
		Name:               req.Name,
		Slug:               req.Slug,
		Description:        req.Description,
		Kind:               kind,
		StartDateTime:      req.StartDateTime,
		EndDateTime:        req.EndDateTime,
		Status:             models.ActivityStatusUpcoming,
		AvailableSlots:     req.AvailableSlots,
		RegistrationFee:    req.RegistrationFee,
		Currency:           currency,
		IsActive:           true,
		IsRegistrationOpen: true,
		Schedules:          schedules,
	}
	if err := h.db.WithContext(ctx).Create(&activity).Error; err != nil {
		log.Printf("Failed to create activity %s: %v", req.Slug, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create activity")
	}

	return c.JSON(http.StatusCreated, newActivityResponse(activity, time.Now()))
}

// Register books slots on an activity. Maps the booking service's tagged
// outcomes and error taxonomy onto HTTP statuses.
func (h *ActivityHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Email == "" && req.Phone == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "One of email or phone is required")
	}

	outcome, err := h.booking.Register(ctx, slug, services.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		TicketCount: req.TicketCount,
	})
	if err != nil {
		var gwErr *services.GatewayError
		switch {
		case errors.Is(err, services.ErrActivityNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		case errors.Is(err, services.ErrRegistrationClosed):
			return echo.NewHTTPError(http.StatusForbidden, "Registration is closed for this activity")
		case errors.Is(err, services.ErrCapacityExceeded):
			return echo.NewHTTPError(http.StatusConflict, "Not enough slots available")
		case errors.As(err, &gwErr):
			log.Printf("Gateway order creation failed for activity %s: %v", slug, err)
			return echo.NewHTTPError(http.StatusBadGateway, "Failed to initiate payment")
		default:
			log.Printf("Registration failed for activity %s: %v", slug, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed")
		}
	}

	resp := RegisterResponse{
		State: outcome.State,
		Registration: RegistrationResponse{
			ID:          outcome.Registration.ID,
			Reference:   outcome.Registration.Reference,
			TicketCount: outcome.Registration.TicketCount,
			Status:      outcome.Registration.Status,
		},
		// Pre-confirmed manual bookings carry the payment page ref and amount
		// alongside the completed state; the zero values of the gateway fields
		// are omitted from the body.
		Amount:         outcome.Amount,
		Currency:       outcome.Currency,
		OrderID:        outcome.OrderID,
		GatewayKeyID:   outcome.GatewayKeyID,
		PaymentPageRef: outcome.PaymentPageRef,
	}
	return c.JSON(http.StatusOK, resp)
}

func parseSchedules(entries []ScheduleEntryRequest) ([]models.Schedule, error) {
	schedules := make([]models.Schedule, 0, len(entries))
	for _, e := range entries {
		start, err := time.Parse("15:04", e.StartTime)
		if err != nil {
			return nil, errors.New("schedule start_time must be in HH:MM format")
		}
		end, err := time.Parse("15:04", e.EndTime)
		if err != nil {
			return nil, errors.New("schedule end_time must be in HH:MM format")
		}
		if !end.After(start) {
			return nil, errors.New("schedule end_time must be after start_time")
		}
		schedules = append(schedules, models.Schedule{
			DayOfWeek: models.ScheduleDay(e.DayOfWeek),
			StartTime: start,
			EndTime:   end,
		})
	}
	return schedules, nil
}
