package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mgthura/parking-ledger/internal/config"     // Internal config loader
	"github.com/mgthura/parking-ledger/internal/database"   // MySQL connection helper
	"github.com/mgthura/parking-ledger/internal/handler"    // HTTP handlers
	"github.com/mgthura/parking-ledger/internal/middleware" // Rate limiting and response cache
	"github.com/mgthura/parking-ledger/internal/queue"      // Shift audit consumer
	"github.com/mgthura/parking-ledger/internal/repository" // Data access layer
	"github.com/mgthura/parking-ledger/internal/router"     // Internal router setup
)

func main() {
	// Load a .env file when present; in production configuration comes
	// from real environment variables and the file is simply absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	// Open the MySQL pool and fail fast when the database is unreachable.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories share the single pool.
	employees := repository.NewEmployeeRepo(db)
	tokens := repository.NewTokenRepo(db)
	shifts := repository.NewShiftRepo(db)
	entries := repository.NewEntryRepo(db)
	stats := repository.NewStatsRepo(db)
	rates := repository.NewRateRepo(db)

	// Handlers own the request flow; each mutation runs its own transaction.
	authH := handler.NewAuthHandler(cfg, employees, tokens)
	entryH := handler.NewEntryHandler(cfg, entries, shifts, stats, rates)
	shiftH := handler.NewShiftHandler(cfg, shifts, entries, stats)
	rateH := handler.NewRateHandler(cfg, rates)

	e := echo.New() // Create Echo instance

	// Redis backs distributed rate limiting and the response cache for the
	// rate table.  A nil client disables both and the server still runs.
	rdb := config.NewRedisClient()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	} else {
		log.Printf("redis unavailable: rate limiting and response cache disabled")
	}

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterEntries(e, entryH, cfg.JWTSecret)
	router.RegisterShifts(e, shiftH, cfg.JWTSecret)
	if rdb != nil {
		router.RegisterRates(e, rateH, cfg.JWTSecret, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		router.RegisterRates(e, rateH, cfg.JWTSecret)
	}

	// The audit consumer tails shift.closed and appends the cash audit
	// trail; it reconnects forever and never takes the server down.
	go func() {
		if err := queue.StartShiftAuditConsumer(); err != nil {
			log.Printf("shift audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
