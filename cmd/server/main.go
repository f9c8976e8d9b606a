package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"clubbook_echo/internal/handlers"
	appMiddleware "clubbook_echo/internal/middleware"
	"clubbook_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migration
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis cache (optional; a nil cache disables caching)
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			log.Println("Continuing without cache")
			cache = nil
		}
	} else {
		log.Println("Warning: REDIS_URL not set, caching disabled")
	}

	// Shared services
	gateway := services.NewRazorpayGateway()
	mailer := services.NewEmailService()
	bookingService := services.NewBookingService(db, gateway, mailer, cache)
	reconcileService := services.NewReconcileService(db, gateway, mailer, cache)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = appMiddleware.JSONErrorHandler
	e.Validator = handlers.NewValidator()

	// Initialize handlers
	activityHandler := handlers.NewActivityHandler(db, cache, bookingService)
	paymentHandler := handlers.NewPaymentHandler(reconcileService)
	opsHandler := handlers.NewOpsHandler(db)

	// Public routes
	e.GET("/activities", activityHandler.ListActivities)
	e.GET("/activities/:slug", activityHandler.GetActivity)
	e.POST("/activities/:slug/register", activityHandler.Register)
	e.POST("/webhooks/razorpay", paymentHandler.HandleRazorpayWebhook)
	e.POST("/verify-payment", paymentHandler.VerifyPayment)

	// Operator routes, guarded by the shared trigger secret
	ops := e.Group("", appMiddleware.RequireTriggerSecret(os.Getenv("TRIGGER_SECRET")))
	ops.POST("/activities", activityHandler.CreateActivity)
	ops.POST("/internal/status-sweep", opsHandler.SweepStatuses)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
