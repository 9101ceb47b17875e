package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crew-booking-backend/config"
	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/model"
)

var log = logger.New("db")

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&model.Vehicle{},
		&model.Worker{},
		&model.Booking{},
		&model.Occupancy{},
		&model.PushSubscription{},
	}
}

// Open connects to the configured database and tunes the pool without migrating.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// Single writer; also keeps the foreign_keys pragma on the only connection.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
		return db, nil
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	return db, nil
}

// Migrate runs AutoMigrate and, on postgres, the optional range index DDL.
func Migrate(db *gorm.DB, cfg *config.DatabaseConfig) error {
	log.Infof("Running database migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.EnableRangeIndex && db.Dialector.Name() == "postgres" {
		log.Infof("Range index is enabled, applying booking window DDL...")
		if err := applyRangeIndexDDL(db); err != nil {
			log.Warnf("failed to apply booking window DDL: %v. Continuing without it.", err)
		}
	}
	return nil
}

// Init opens the database and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg); err != nil {
		return nil, err
	}
	log.Infof("Database initialization complete.")
	return db, nil
}

func applyRangeIndexDDL(db *gorm.DB) error {
	for _, ddl := range rangeIndexDDL() {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}

func rangeIndexDDL() []string {
	return []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		"ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_window_valid;",
		"ALTER TABLE bookings ADD CONSTRAINT bookings_window_valid CHECK (start_time < end_time);",

		// Half-open window index for && lookups over booking ranges.
		"CREATE INDEX IF NOT EXISTS idx_bookings_window ON bookings " +
			"USING GIST (tstzrange(start_time, end_time, '[)'));",

		"CREATE INDEX IF NOT EXISTS idx_occupancies_worker_booking ON occupancies (worker_id, booking_id);",
	}
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
