package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

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

	// Optional Redis lock so overlapping worker replicas run the sweep once
	// per tick. Without Redis every replica sweeps; the sweep is idempotent so
	// that is only wasted work.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	}

	interval := 5 * time.Minute
	if v := os.Getenv("SWEEP_INTERVAL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			interval = time.Duration(minutes) * time.Minute
		}
	}

	log.Printf("Status sweep worker started (interval %s)", interval)

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once immediately so a fresh deploy converges without waiting a full
	// interval, then tick.
	runSweep(ctx, db, cache)

	for {
		select {
		case <-ticker.C:
			runSweep(ctx, db, cache)
		case <-ctx.Done():
			return
		}
	}
}

const sweepLockKey = "status-sweep:lock"

func runSweep(ctx context.Context, db *gorm.DB, cache *services.RedisCache) {
	if cache != nil {
		ok, err := cache.SetNX(ctx, sweepLockKey, time.Now().Unix(), time.Minute)
		if err != nil {
			log.Printf("Sweep lock check failed, running anyway: %v", err)
		} else if !ok {
			return
		}
	}

	updated, err := services.SweepActivityStatuses(ctx, db)
	if err != nil {
		log.Printf("Status sweep failed: %v", err)
		return
	}
	if updated > 0 {
		log.Printf("Status sweep updated %d activities", updated)
	}
}
