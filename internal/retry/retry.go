package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// Policy defines how long and how often a backend is pinged before giving up.
type Policy struct {
	ConnectTimeout time.Duration // total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // initial wait between retries, doubles each attempt
	MaxWait        time.Duration // cap on the wait between retries
	PingTimeout    time.Duration // timeout for each ping attempt
	WarnThreshold  int           // attempts logged at warn before switching to error
}

// Validate ensures all durations are usable.
func (p Policy) Validate() error {
	switch {
	case p.ConnectTimeout <= 0:
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", p.ConnectTimeout)
	case p.RetryInterval <= 0:
		return fmt.Errorf("RetryInterval must be > 0, got %v", p.RetryInterval)
	case p.MaxWait <= 0:
		return fmt.Errorf("MaxWait must be > 0, got %v", p.MaxWait)
	case p.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", p.PingTimeout)
	case p.WarnThreshold < 0:
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// PingFunc checks a backend once.
type PingFunc func(ctx context.Context) error

// Connect pings until success or until the policy's ConnectTimeout is spent,
// backing off exponentially between attempts. backend and addr only label logs.
func Connect(ctx context.Context, backend, addr string, p Policy, ping PingFunc, log logger.Logger) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid %s retry policy: %w", backend, err)
	}
	log = log.With(logger.String("backend", backend), logger.String("addr", addr))

	ctx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()

	log.Info("connecting", logger.Duration("timeout", p.ConnectTimeout))
	attempt := 0
	wait := p.RetryInterval
	start := time.Now()

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, p.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected after retry",
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected")
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error("unavailable - failed to connect after timeout",
				logger.Int("attempts", attempt),
				logger.Duration("timeout", p.ConnectTimeout),
				logger.Error(err))
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				backend, addr, attempt, p.ConnectTimeout, err)

		case <-timer.C:
			logRetry(log, attempt, timeLeft(ctx), wait, p.WarnThreshold, err)
			wait *= 2
			if wait > p.MaxWait {
				wait = p.MaxWait
			}
		}
	}
}

func logRetry(log logger.Logger, attempt int, remaining, next time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		log.Error("still down - retrying but timeout approaching",
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	case attempt <= warnThreshold:
		log.Warn("connection failed, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	default:
		log.Error("still unavailable - connection attempts failing",
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
