package database

import (
	"fmt"
	"strings"

	"business_manager/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the database for driver ("postgres", "mysql" or "sqlite")
// and migrates the schema.
func Initialize(driver, databaseURL, logLevel string) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, databaseURL)
	if err != nil {
		return nil, err
	}

	config := &gorm.Config{
		Logger:         logger.Default.LogMode(parseLogLevel(logLevel)),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; one connection also keeps an
		// in-memory database alive and shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func dialectorFor(driver, databaseURL string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "":
		return postgres.Open(databaseURL), nil
	case "mysql":
		return mysql.Open(databaseURL), nil
	case "sqlite":
		return sqlite.Open(databaseURL), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.FoodCategory{},
		&models.SellableItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ExpenseCategory{},
		&models.ExpenseRecord{},
		&models.PaymentTransaction{},
	)
}
