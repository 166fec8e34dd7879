package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/database"
	"github.com/temcen/tastematch/internal/handlers"
	"github.com/temcen/tastematch/internal/middleware"
	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/internal/validation"
	"github.com/temcen/tastematch/pkg/models"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: NewLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	svc, err := services.New(cfg, app.logger, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svc

	schemas, err := validation.NewDefaultSchemaValidator()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}

	app.handlers = handlers.New(cfg, app.logger, svc, schemas)
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

func (a *App) Services() *services.Services {
	return a.services
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.services.Close(); err != nil {
		a.logger.WithError(err).Warn("Error closing match publisher")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)

	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	var limiter middleware.Limiter
	if a.services.RateLimit != nil {
		limiter = a.services.RateLimit
	}

	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(a.services.Auth, a.logger))

		api.GET("/profiles/:userId", a.handlers.Profile.Get)
		api.GET("/similarity/:userId/:otherUserId", middleware.RateLimit(limiter, "similarity"), a.handlers.Profile.Similarity)

		matches := api.Group("/matches")
		{
			matches.POST("/preview", middleware.RateLimit(limiter, "preview"), a.handlers.Match.Preview)
			matches.GET("/:userId", a.handlers.Match.List)
			matches.PATCH("/records/:matchId", a.handlers.Match.UpdateOutcome)
		}

		users := api.Group("/users")
		{
			users.POST("/:userId/logs", middleware.RateLimit(limiter, "log_import"), a.handlers.Logs.Import)
		}

		admin := api.Group("/admin")
		{
			admin.Use(middleware.RequireRole(models.RoleAdmin))

			admin.POST("/rounds", a.handlers.Admin.StartRound)
			admin.GET("/rounds/:roundId", a.handlers.Admin.GetRound)
			admin.POST("/cache/clear", a.handlers.Admin.ClearCache)
		}
	}

	a.router = router
}
