package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormLogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{
		ConnectTimeout: time.Second,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    500 * time.Millisecond,
	}
}

func TestOpenSqlite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cards.db") + "?_busy_timeout=5000"
	db, err := Open(context.Background(), Options{
		Driver: DriverSqlite,
		DSN:    dsn,
		Silent: true,
		Retry:  testPolicy(),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.Equal(t, "sqlite", db.Dialector.Name())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x", Retry: testPolicy()}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormLogger.Info, gormLevel("debug"))
	assert.Equal(t, gormLogger.Warn, gormLevel("info"))
	assert.Equal(t, gormLogger.Error, gormLevel("error"))
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "cards.db", redactDSN(DriverSqlite, "cards.db"))
	assert.Equal(t, "postgres://***", redactDSN(DriverPostgres, "postgres://u:pw@db/cards"))
}
