package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/retry"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures the relational connection.
type Options struct {
	Driver          string // "sqlite" | "postgres"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
	LogLevel        string // application level, mapped onto gorm's
	Silent          bool   // disable gorm logging entirely (tests)
	Retry           retry.Policy
}

// Open connects to the configured database and waits until it answers a ping.
func Open(ctx context.Context, opts Options, log logger.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	level := gormLevel(opts.LogLevel)
	if opts.Silent {
		level = gormLogger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, level, opts.SlowQuery),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := retry.Connect(ctx, opts.Driver, redactDSN(opts.Driver, opts.DSN), opts.Retry, sqlDB.PingContext, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSqlite:
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// redactDSN keeps credentials out of connection logs.
func redactDSN(driver, dsn string) string {
	if driver == DriverSqlite {
		return dsn
	}
	return driver + "://***"
}
