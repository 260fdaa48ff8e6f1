package database

import (
	"fmt"
	"time"

	"github.com/stocktr-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL and configures the connection pool
func Open(dsn, mode string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: Logger(mode),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Logger returns the gorm logger for a server mode
func Logger(mode string) logger.Interface {
	switch mode {
	case "release":
		return logger.Default.LogMode(logger.Warn)
	case "test":
		return logger.Default.LogMode(logger.Silent)
	default:
		return logger.Default.LogMode(logger.Info)
	}
}

// AutoMigrate creates or updates the users and watchlists tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.WatchlistEntry{},
	)
}
