package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/libroom/reserve/internal/booking"
	"github.com/libroom/reserve/internal/config"
	"github.com/libroom/reserve/internal/database"
	"github.com/libroom/reserve/internal/handler"
	"github.com/libroom/reserve/internal/middleware"
	"github.com/libroom/reserve/internal/queue"
	"github.com/libroom/reserve/internal/repository"
	"github.com/libroom/reserve/internal/router"
	queue_publisher "github.com/libroom/reserve/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	payments := repository.NewPaymentRepo(db)
	balances := repository.NewBalanceRepo(db)
	rules := repository.NewRuleRepo(db)
	audit := repository.NewAuditRepo(db)

	// Booking service with best-effort event publishing. Failures are
	// logged inside the publisher and never fail a booking.
	svc := booking.NewService(db, rooms, reservations, equipment, payments, balances, rules, audit)
	svc.Publish = func(ctx context.Context, ev queue.ReservationEvent) {
		_ = queue_publisher.PublishReservationEvent(ctx, ev)
	}

	// Background consumer appends reservation events to logs/reservation.log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation-consumer stopped: %v", err)
		}
	}()

	// Redis-backed cache and rate limiting for the public browse routes.
	// A nil client degrades both to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(svc), rateMW, cacheMW)
	router.RegisterMember(e, handler.NewMemberHandler(svc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(svc, users, rooms), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
