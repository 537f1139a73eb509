// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/MrSnakeDoc/cardshelf/internal/database"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/retry"
)

// PostgresDSNEnv names the variable that enables postgres-backed tests.
const PostgresDSNEnv = "CARDS_TEST_POSTGRES_DSN"

func quickRetry() retry.Policy {
	return retry.Policy{
		ConnectTimeout: 2 * time.Second,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        100 * time.Millisecond,
		PingTimeout:    time.Second,
	}
}

// SqliteDB opens a fresh sqlite database file under tb.TempDir and closes it
// on cleanup.
func SqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "cards.db") + "?_busy_timeout=5000"
	db, err := database.Open(context.Background(), database.Options{
		Driver: database.DriverSqlite,
		DSN:    dsn,
		Silent: true,
		Retry:  quickRetry(),
	}, logger.Nop())
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = database.Close(db) })
	return db
}

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error
)

// PostgresDB returns a shared postgres connection, skipping the test when
// CARDS_TEST_POSTGRES_DSN is unset. Each test gets a transaction that is
// rolled back on cleanup.
func PostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		tb.Skipf("set %s to run postgres integration tests", PostgresDSNEnv)
	}
	pgOnce.Do(func() {
		pgDB, pgErr = database.Open(context.Background(), database.Options{
			Driver: database.DriverPostgres,
			DSN:    dsn,
			Silent: true,
			Retry:  quickRetry(),
		}, logger.Nop())
	})
	if pgErr != nil {
		tb.Fatalf("failed to init postgres: %v", pgErr)
	}
	tx := pgDB.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { _ = tx.Rollback().Error })
	return tx
}

// Clock hands out strictly increasing timestamps, one second apart.
type Clock struct {
	mu  sync.Mutex
	cur time.Time
}

// NewClock starts a clock at start.
func NewClock(start time.Time) *Clock {
	return &Clock{cur: start.UTC()}
}

// Now advances the clock and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

// Peek returns the current time without advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}
