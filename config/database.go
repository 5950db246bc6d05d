package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const defaultSQLiteDSN = "file::memory:?cache=shared"

// ConnectDatabase opens the catalog database for the configured driver
func ConnectDatabase(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("failed to connect to database: missing configuration")
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	gormConfig := &gorm.Config{}
	if cfg.IsProduction() {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	log.Printf("Database connection established (%s)", cfg.DatabaseDriver)
	return nil
}

func dialectorFor(cfg *Config) (gorm.Dialector, error) {
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for %s", DriverPostgres)
		}
		return postgres.Open(cfg.DatabaseURL), nil
	case DriverSQLite:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
