package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clubbook_echo/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	return db, mock
}

// expectOpenActivityFetch queues the activity lookup with its schedule and
// club/organizer preloads as Register performs them. Expectations are matched
// out of order, so the preload sequence does not matter.
func expectOpenActivityFetch(mock sqlmock.Sqlmock, fee int) {
	mock.ExpectQuery(`SELECT .* FROM "activities"`).WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "club_id", "slug", "kind", "status", "available_slots", "booked_slots",
			"registration_fee", "currency", "is_active", "is_registration_open",
		}).AddRow(1, 5, "weekly-practice", "recurring", "upcoming", 10, 0, fee, "INR", true, true))
	mock.ExpectQuery(`SELECT .* FROM "schedules"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "activity_id"}))
	mock.ExpectQuery(`SELECT .* FROM "clubs"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "organizer_id", "slug"}).AddRow(5, 6, "riverside"))
	mock.ExpectQuery(`SELECT .* FROM "organizers"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "gateway_key_id", "gateway_key_secret"}).AddRow(6, "", ""))
}

func TestRegisterFreeActivity(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	svc := NewBookingService(db, nil, nil, nil)

	expectOpenActivityFetch(mock, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "activities"`).WillReturnRows(
		sqlmock.NewRows([]string{"available_slots", "booked_slots"}).AddRow(10, 0))
	mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(`SELECT .* FROM "registrations"`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "registrations"`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectExec(`UPDATE "activities" SET "booked_slots"=booked_slots`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := svc.Register(context.Background(), "weekly-practice", RegisterInput{
		FirstName:   "Asha",
		Email:       "asha@example.com",
		TicketCount: 2,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if outcome.State != OutcomeCompleted {
		t.Errorf("Register() state = %q; want %q", outcome.State, OutcomeCompleted)
	}
	if outcome.Payment != nil {
		t.Error("Register() created a payment for a free activity")
	}
	if outcome.Registration.TicketCount != 2 {
		t.Errorf("Register() ticket count = %d; want 2", outcome.Registration.TicketCount)
	}
	if outcome.Registration.Reference == "" {
		t.Error("Register() registration has no reference")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterManualFeeReservesSlots(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	// A nil gateway panics if the manual path ever reaches for it.
	svc := NewBookingService(db, nil, nil, nil)

	expectOpenActivityFetch(mock, 25000)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "activities"`).WillReturnRows(
		sqlmock.NewRows([]string{"available_slots", "booked_slots"}).AddRow(10, 0))
	mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "email"}).AddRow(4, "asha@example.com"))
	mock.ExpectQuery(`SELECT .* FROM "registrations"`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "registrations"`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(8))
	// Pre-confirmed manual booking reserves slots inside the transaction.
	mock.ExpectExec(`UPDATE "activities" SET "booked_slots"=booked_slots`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "payments"`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	outcome, err := svc.Register(context.Background(), "weekly-practice", RegisterInput{
		FirstName:   "Asha",
		Email:       "asha@example.com",
		TicketCount: 2,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if outcome.State != OutcomeCompleted {
		t.Errorf("Register() state = %q; want %q for a manual-fee booking", outcome.State, OutcomeCompleted)
	}
	if outcome.Payment == nil {
		t.Fatal("Register() returned no payment for a paid activity")
	}
	if outcome.Payment.PaymentGateway != models.PaymentGatewayManual {
		t.Errorf("Register() payment gateway = %q; want %q", outcome.Payment.PaymentGateway, models.PaymentGatewayManual)
	}
	if outcome.Payment.ProviderOrderID != "" {
		t.Errorf("Register() provider order id = %q; want empty for manual payment", outcome.Payment.ProviderOrderID)
	}
	if outcome.Amount != 500 {
		t.Errorf("Register() amount = %v; want 500", outcome.Amount)
	}
	if !strings.HasPrefix(outcome.PaymentPageRef, "/pay/") {
		t.Errorf("Register() payment page ref = %q; want /pay/ prefix", outcome.PaymentPageRef)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertRegistrationAddsTickets(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .* FROM "registrations"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "activity_id", "user_id", "ticket_count", "status"}).
			AddRow(8, 1, 4, 2, "registered"))
	mock.ExpectExec(`UPDATE "registrations" SET "ticket_count"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reg, err := upsertRegistration(db, 1, 4, 3)
	if err != nil {
		t.Fatalf("upsertRegistration() error = %v", err)
	}
	if reg.ID != 8 {
		t.Errorf("upsertRegistration() id = %d; want the existing row 8", reg.ID)
	}
	if reg.TicketCount != 5 {
		t.Errorf("upsertRegistration() ticket count = %d; want 5", reg.TicketCount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestActivityCacheKeys(t *testing.T) {
	if got := ActivityDetailCacheKey("weekly-practice"); got != "activities:detail:weekly-practice" {
		t.Errorf("ActivityDetailCacheKey() = %q", got)
	}

	// Filtered list keys must sit under the unfiltered key as a prefix so one
	// prefix delete invalidates every cached list variant.
	base := ActivityListCacheKey("")
	filtered := ActivityListCacheKey("riverside")
	if base == filtered {
		t.Error("filtered list key should differ from the base key")
	}
	if !strings.HasPrefix(filtered, base) {
		t.Errorf("ActivityListCacheKey(%q) = %q; want prefix %q", "riverside", filtered, base)
	}
}

func TestPaymentAmount(t *testing.T) {
	tests := []struct {
		name     string
		fee      int
		tickets  int
		expected float64
	}{
		{"single ticket", 25000, 1, 250},
		{"multiple tickets", 25000, 3, 750},
		{"sub-unit fee", 2550, 2, 51},
		{"free activity", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paymentAmount(tt.fee, tt.tickets)
			if got != tt.expected {
				t.Errorf("paymentAmount(%d, %d) = %v; want %v", tt.fee, tt.tickets, got, tt.expected)
			}
		})
	}
}

func TestReserveSlots(t *testing.T) {
	t.Run("increments when capacity allows", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectExec(`UPDATE "activities" SET "booked_slots"=booked_slots`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := reserveSlots(db, 1, 2); err != nil {
			t.Fatalf("reserveSlots() error = %v; want nil", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("rejects when no row satisfies the capacity condition", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectExec(`UPDATE "activities" SET "booked_slots"=booked_slots`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := reserveSlots(db, 1, 2)
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("reserveSlots() error = %v; want ErrCapacityExceeded", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
