package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"mesaYaApi/internal/config"
	"mesaYaApi/internal/handler"
	"mesaYaApi/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterReservations registers the reservation lifecycle and read-side
// routes. Every route requires a valid access token; the rate limiter sits
// behind the JWT middleware so buckets are scoped per user.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(rl, rdb))

	g.POST("/reservations", r.Create)
	g.DELETE("/reservations/:id", r.Cancel)
	g.GET("/reservations", r.List)
	g.GET("/reservations/by-date", r.ByDate)
	g.GET("/tables/availability", r.Availability)
}
