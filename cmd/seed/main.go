package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"clubbook_echo/internal/models"
	"clubbook_echo/internal/services"
)

// Seeds a development database with one organizer, one club and a pair of
// activities (one-time paid, recurring free). Gateway credentials come from
// the environment so sandbox keys never end up in source.
func main() {
	organizerEmail := flag.String("email", "organizer@example.com", "Organizer email")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := services.InitDB(dsn)
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	organizer := models.Organizer{
		Name:             "Demo Organizer",
		Email:            *organizerEmail,
		GatewayKeyID:     os.Getenv("SEED_GATEWAY_KEY_ID"),
		GatewayKeySecret: os.Getenv("SEED_GATEWAY_KEY_SECRET"),
		WebhookSecret:    os.Getenv("SEED_WEBHOOK_SECRET"),
	}
	if err := db.Where("email = ?", organizer.Email).FirstOrCreate(&organizer).Error; err != nil {
		log.Fatalf("Failed to seed organizer: %v", err)
	}

	club := models.Club{
		OrganizerID: organizer.ID,
		Name:        "Riverside Club",
		Slug:        "riverside",
	}
	if err := db.Where("slug = ?", club.Slug).FirstOrCreate(&club).Error; err != nil {
		log.Fatalf("Failed to seed club: %v", err)
	}

	start := time.Now().AddDate(0, 0, 7)
	end := start.Add(3 * time.Hour)
	oneTime := models.Activity{
		ClubID:          club.ID,
		Name:            "Annual Tournament",
		Slug:            "annual-tournament",
		Description:     "One-day knockout tournament, all levels welcome.",
		Kind:            models.ActivityKindOneTime,
		StartDateTime:   &start,
		EndDateTime:     &end,
		Status:          models.ActivityStatusUpcoming,
		AvailableSlots:  64,
		RegistrationFee: 50000, // 500.00 in minor units
		Currency:        "INR",
	}
	if err := db.Where("slug = ?", oneTime.Slug).FirstOrCreate(&oneTime).Error; err != nil {
		log.Fatalf("Failed to seed one-time activity: %v", err)
	}

	clock := func(h, m int) time.Time {
		return time.Date(2000, 1, 1, h, m, 0, 0, time.Local)
	}
	recurring := models.Activity{
		ClubID:         club.ID,
		Name:           "Weekly Practice",
		Slug:           "weekly-practice",
		Description:    "Open practice sessions twice a week.",
		Kind:           models.ActivityKindRecurring,
		AvailableSlots: 30,
		Currency:       "INR",
		Schedules: []models.Schedule{
			{DayOfWeek: models.ScheduleDayMonday, StartTime: clock(10, 0), EndTime: clock(12, 0)},
			{DayOfWeek: models.ScheduleDayWednesday, StartTime: clock(14, 0), EndTime: clock(16, 0)},
		},
	}
	if err := db.Where("slug = ?", recurring.Slug).FirstOrCreate(&recurring).Error; err != nil {
		log.Fatalf("Failed to seed recurring activity: %v", err)
	}

	log.Printf("Seed complete: organizer %d, club %d, activities %d and %d",
		organizer.ID, club.ID, oneTime.ID, recurring.ID)
}
