package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/elegant-dining/reservation-api/internal/auth"
	"github.com/elegant-dining/reservation-api/internal/config"
	"github.com/elegant-dining/reservation-api/internal/database"
	"github.com/elegant-dining/reservation-api/internal/handler"
	"github.com/elegant-dining/reservation-api/internal/middleware"
	"github.com/elegant-dining/reservation-api/internal/queue"
	"github.com/elegant-dining/reservation-api/internal/repository"
	"github.com/elegant-dining/reservation-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	reservations := repository.NewReservationRepo(db)
	sessions := auth.NewManager(sessionRepo, time.Duration(cfg.SessionTTLHours)*time.Hour)

	// Redis is optional: without it the limiter and cache pass
	// everything through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Consume reservation.created events in the background. The
	// consumer runs its own reconnect loop.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions), sessions, limit)
	router.RegisterReservations(e, handler.NewReservationHandler(reservations), sessions, cache)
	router.RegisterUpload(e, handler.NewUploadHandler(cfg.UploadDir))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
