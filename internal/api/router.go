package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/datamind/datamind-api/internal/api/handler"
	"github.com/datamind/datamind-api/internal/api/middleware"
	"github.com/datamind/datamind-api/internal/core/ports"
	"github.com/datamind/datamind-api/internal/dbconn"
)

// Deps carries everything the router needs. rdb is nil when the memory
// session backend is selected.
type Deps struct {
	Broker ports.SessionBroker
	Prober *dbconn.Prober
	Audit  handler.AuditHistory
	Mongo  *mongo.Database
	Redis  *redis.Client
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("datamind"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Broker)
	dbHandler := handler.NewDBHandler(deps.Prober)
	auditHandler := handler.NewAuditHandler(deps.Audit)
	sessionRequired := middleware.Session(deps.Broker)

	// --- Public auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	// --- Session-bound routes ---
	e.POST("/auth/logout", authHandler.Logout, sessionRequired)
	e.GET("/auth/session/me", authHandler.Me, sessionRequired)
	e.POST("/auth/session/set-db", authHandler.SetDatabase, sessionRequired)
	e.GET("/auth/session/history", auditHandler.History, sessionRequired)
	e.POST("/db/test", dbHandler.Test, sessionRequired)

	// --- Probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
