package main

import (
	"context"
	"time"

	"church-service/internal/handler"
	"church-service/internal/middleware"
	"church-service/internal/repository"
	"church-service/internal/service"
	"church-service/internal/tokenstore"
	"church-service/pkg/config"
	"church-service/pkg/database"
	"church-service/pkg/jwtutil"
	"church-service/pkg/logger"
	"church-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync() //nolint:errcheck
	log.Info("Starting church service...", append(cfg.LogConfig(), zap.String("version", version))...)

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	denylist := newDenylist(cfg.Redis, log)

	svcs := service.New(
		repository.New(db),
		jwtutil.New(cfg.JWT),
		denylist,
		service.PasswordPolicy{MinLength: cfg.Auth.PasswordMinLength},
		log,
	)

	prometheus.SetVersion(version)

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	handler.Register(e, svcs)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// newDenylist uses Redis when REDIS_ADDR is set and exits if it cannot be
// reached.
func newDenylist(cfg config.RedisConfig, log *zap.Logger) tokenstore.Denylist {
	if cfg.Addr == "" {
		log.Warn("REDIS_ADDR not set, revoked refresh tokens are kept in memory")
		return tokenstore.NewMemory()
	}

	rdb := tokenstore.NewRedis(cfg.Addr, cfg.Password, cfg.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx); err != nil {
		log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Addr), zap.Error(err))
	}
	log.Info("Refresh token denylist backed by redis", zap.String("addr", cfg.Addr))
	return rdb
}
