package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/upsrj/checkin-system/internal/api/handler"
	"github.com/upsrj/checkin-system/internal/api/middleware"
	"github.com/upsrj/checkin-system/internal/core/ports"
	"github.com/upsrj/checkin-system/internal/infrastructure/config"
)

// Deps carries everything the router needs to register routes.
type Deps struct {
	Ledger ports.LedgerService
	Auth   ports.AuthService
	Mongo  *mongo.Database
	Redis  *redis.Client
	Config *config.Config
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("checkin"))
	e.Use(middleware.NewTokenBucket(d.Config.RateLimitPerMin, d.Config.RateLimitPerMin).Middleware())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	checkInHandler := handler.NewCheckInHandler(d.Ledger)
	studentHandler := handler.NewStudentHandler(d.Ledger)
	authMiddleware := middleware.Auth(d.Config.JWTSecret)

	// --- Auth routes ---
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)

	// --- Check-in protocol ---
	e.POST("/checkin", checkInHandler.Record)
	e.GET("/checkin", checkInHandler.History)

	// Roster carries PII, so it sits behind the session token.
	e.GET("/alumnos", studentHandler.List, authMiddleware)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
