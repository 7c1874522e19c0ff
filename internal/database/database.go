package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cairn/research-portal/portal-backend/internal/config"
	"cairn/research-portal/portal-backend/internal/funding"
	"cairn/research-portal/portal-backend/internal/profiles"
	"cairn/research-portal/portal-backend/internal/projects"
)

// Open connects to Postgres and applies the pool settings
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	logger.Info("Connecting to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db_name", cfg.DBName))

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	return db, nil
}

// Migrate creates the portal tables
func Migrate(db *gorm.DB) error {
	for name, migrate := range map[string]func(*gorm.DB) error{
		"profiles": profiles.Migrate,
		"projects": projects.Migrate,
		"funding":  funding.Migrate,
	} {
		if err := migrate(db); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
	}
	return nil
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
