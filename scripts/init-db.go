package main

import (
	"log"

	"business_manager/internal/config"
	"business_manager/internal/database"
	"business_manager/internal/logger"
	"business_manager/internal/migrations"

	"go.uber.org/zap"
)

// init-db migrates the configured database and seeds the default menu and
// expense categories regardless of SEED_DEFAULTS.
func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zl.Sync()

	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := migrations.RunMigrations(db, true, zl); err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	zl.Info("database initialization completed", zap.String("driver", cfg.DatabaseDriver))
}
