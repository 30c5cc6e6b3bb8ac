package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/formatrack/training-system/internal/api/handler"
	"github.com/formatrack/training-system/internal/api/middleware"
	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/core/ports"
	"github.com/formatrack/training-system/internal/core/service"
	"github.com/formatrack/training-system/internal/infrastructure/config"
	mongostore "github.com/formatrack/training-system/internal/infrastructure/db/mongo"
	"github.com/formatrack/training-system/internal/infrastructure/export"
)

// NewRouter builds the Echo instance with all routes registered. rdb is nil
// when the in-process cache is in use; the readiness probe then skips it.
func NewRouter(db *mongo.Database, rdb *redis.Client, cacheStore ports.Cache, mailer ports.Mailer, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("training"))

	// --- Dependencies ---
	accountRepo := mongostore.NewAccountRepository(db)
	recordRepo := mongostore.NewRecordRepository(db)
	optionRepo := mongostore.NewOptionRepository(db)

	authService := service.NewAuthService(accountRepo, mailer, cfg.JWTSecret, cfg.PasswordSalt, cfg.JWTTTL)
	aggregateService := service.NewAggregateService(optionRepo, recordRepo, cacheStore, cfg.CacheTTL, log)
	recordService := service.NewRecordService(recordRepo, authService, aggregateService, log)

	authHandler := handler.NewAuthHandler(authService)
	recordHandler := handler.NewRecordHandler(recordService, export.NewCSVRenderer())
	aggregateHandler := handler.NewAggregateHandler(aggregateService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/password-reset/request", authHandler.RequestReset)
	e.POST("/auth/password-reset/confirm", authHandler.ConfirmReset)

	// --- Record routes ---
	v1 := e.Group("/v1", authMiddleware)
	v1.GET("/records", recordHandler.List)
	v1.GET("/records/export", recordHandler.Export)
	v1.POST("/records", recordHandler.Create, adminOnly)
	v1.PUT("/records/:id", recordHandler.Update, adminOnly)
	v1.DELETE("/records/:id", recordHandler.Delete, adminOnly)

	// --- Aggregates ---
	v1.GET("/options", aggregateHandler.Options)
	v1.GET("/stats", aggregateHandler.Summary)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
