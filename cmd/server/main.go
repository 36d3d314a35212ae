package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"mesaYaApi/internal/cache"
	"mesaYaApi/internal/config"
	"mesaYaApi/internal/database"
	"mesaYaApi/internal/handler"
	"mesaYaApi/internal/queue"
	"mesaYaApi/internal/repository"
	"mesaYaApi/internal/router"
	"mesaYaApi/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs both the availability cache and the rate limiter. When it
	// is unreachable the cache falls back to the in-process store and the
	// limiter disables itself.
	rdb := config.NewRedisClient()
	var availability cache.Availability
	if rdb != nil {
		availability = cache.NewRedisAvailability(rdb, cfg.AvailabilityTTL)
	} else {
		log.Printf("redis unavailable, using in-memory availability cache")
		availability = cache.NewMemoryAvailability(cfg.AvailabilityTTL)
	}

	tables := repository.NewTableRepo(db)
	reservations := repository.NewReservationRepo(db)
	users := repository.NewUserRepo(db)

	publisher := queue.NewPublisher()
	svc := service.NewReservationService(tables, reservations, availability, publisher)

	// The consumer drains reservation events into the audit log. It
	// reconnects on its own, so a broker outage never blocks startup.
	go queue.StartReservationConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost), cfg.JWTSecret)
	router.RegisterReservations(e, handler.NewReservationHandler(svc), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
