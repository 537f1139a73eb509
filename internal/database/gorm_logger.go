package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// zapGormLogger routes gorm's SQL logging into the application logger.
type zapGormLogger struct {
	log       logger.Logger
	level     gormLogger.LogLevel
	slowQuery time.Duration
}

func newGormLogger(log logger.Logger, level gormLogger.LogLevel, slowQuery time.Duration) gormLogger.Interface {
	return &zapGormLogger{
		log:       log.With(logger.String("component", "gorm")),
		level:     level,
		slowQuery: slowQuery,
	}
}

// gormLevel maps the application log level onto gorm's coarser scale.
func gormLevel(appLevel string) gormLogger.LogLevel {
	switch appLevel {
	case "debug":
		return gormLogger.Info
	case "error":
		return gormLogger.Error
	default:
		return gormLogger.Warn
	}
}

func (l *zapGormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *zapGormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Info {
		l.log.Infof(msg, args...)
	}
}

func (l *zapGormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Warn {
		l.log.Warnf(msg, args...)
	}
}

func (l *zapGormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Error {
		l.log.Errorf(msg, args...)
	}
}

func (l *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormLogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("query failed",
			logger.String("sql", sql), logger.Int64("rows", rows), logger.Duration("elapsed", elapsed), logger.Error(err))
	case l.slowQuery > 0 && elapsed > l.slowQuery && l.level >= gormLogger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query",
			logger.String("sql", sql), logger.Int64("rows", rows), logger.Duration("elapsed", elapsed))
	case l.level >= gormLogger.Info:
		sql, rows := fc()
		l.log.Debug("query",
			logger.String("sql", sql), logger.Int64("rows", rows), logger.Duration("elapsed", elapsed))
	}
}
