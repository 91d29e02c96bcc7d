package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/content"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Supported dialects.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultConnMaxIdleTime = 5 * time.Minute

// Options selects the dialect and pool sizing.
type Options struct {
	Driver       string
	Path         string
	DSN          string
	MaxOpenConns int
}

// Open connects to the configured database. It does not touch the schema; call Migrate for that.
func Open(options Options, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialector, err := dialectorFor(options)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  NewGormLogger(logger),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", options.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if normalizeDriver(options.Driver) == DriverSQLite {
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		maxOpen := options.MaxOpenConns
		if maxOpen < 1 {
			maxOpen = 1
		}
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
		sqlDB.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}

	logger.Info("database opened", zap.String("driver", normalizeDriver(options.Driver)))
	return db, nil
}

// Migrate brings the schema up to date and applies pending data migrations.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if db == nil {
		return fmt.Errorf("database: connection required")
	}
	models := append(content.Models(), &users.User{}, &migrationRecord{})
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("database: auto migrate: %w", err)
	}
	return applyMigrations(db, registeredMigrations(), logger)
}

func dialectorFor(options Options) (gorm.Dialector, error) {
	switch normalizeDriver(options.Driver) {
	case DriverSQLite:
		path := strings.TrimSpace(options.Path)
		if path == "" {
			return nil, fmt.Errorf("database path is required")
		}
		return sqlite.Open(path), nil
	case DriverPostgres:
		dsn := strings.TrimSpace(options.DSN)
		if dsn == "" {
			return nil, fmt.Errorf("database dsn is required")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database driver %q is not supported", options.Driver)
	}
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}
