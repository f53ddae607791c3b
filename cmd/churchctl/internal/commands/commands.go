package commands

import (
	"fmt"

	"church-service/internal/repository"
	"church-service/pkg/config"
	"church-service/pkg/database"
	"church-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Globals struct {
	Debug   bool
	Version string
}

// env is what every command needs: a migrated database and a logger.
type env struct {
	cfg   *config.Config
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func (e *env) Close() {
	_ = database.Close(e.db)
	_ = e.log.Sync()
}

func open(globals *Globals) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if globals.Debug {
		cfg.Log.Level = "debug"
	}
	logger.InitLogger(cfg)
	log := logger.GetLogger()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &env{cfg: cfg, db: db, store: repository.New(db), log: log}, nil
}
