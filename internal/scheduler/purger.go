package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// DefaultPurgeThreshold is how long a card stays hidden before it is purged.
const DefaultPurgeThreshold = 90 * 24 * time.Hour

// HiddenPurger deletes cards hidden before a cutoff.
type HiddenPurger interface {
	PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Purger permanently deletes cards that have stayed hidden for longer than
// the threshold.
type Purger struct {
	catalog   HiddenPurger
	logger    logger.Logger
	threshold time.Duration
	now       func() time.Time
	loop      *loop
	started   atomic.Bool
}

// NewPurger creates a purger running every interval.
func NewPurger(
	catalog HiddenPurger,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *Purger {
	if threshold <= 0 {
		threshold = DefaultPurgeThreshold
	}

	return &Purger{
		catalog:   catalog,
		logger:    log.With(logger.String("component", "purger")),
		threshold: threshold,
		now:       func() time.Time { return time.Now().UTC() },
		loop:      newLoop(interval, nil),
	}
}

// Start purges once, then on every interval.
func (p *Purger) Start(ctx context.Context) error {
	if _, err := p.Collect(ctx); err != nil {
		p.logger.Warn("initial purge failed", logger.Error(err))
	}

	p.started.Store(true)
	p.loop.run(ctx, p.collectLogged, p.collectLogged)
	return nil
}

// Stop stops the purger and waits for a running pass to finish.
func (p *Purger) Stop() {
	p.loop.stop(p.started.Load())
}

func (p *Purger) collectLogged(ctx context.Context) {
	if _, err := p.Collect(ctx); err != nil {
		p.logger.Error("purge failed", logger.Error(err))
	}
}

// Collect deletes cards hidden for longer than the threshold and returns how
// many were removed.
func (p *Purger) Collect(ctx context.Context) (int, error) {
	cutoff := p.now().Add(-p.threshold)
	p.logger.Debug("purging hidden cards", logger.String("cutoff", cutoff.Format(time.RFC3339)))

	purged, err := p.catalog.PurgeHiddenBefore(ctx, cutoff)
	if purged > 0 {
		p.logger.Info("purge completed",
			logger.Int("purged", purged),
			logger.Duration("threshold", p.threshold))
	} else if err == nil {
		p.logger.Debug("no hidden cards to purge")
	}
	return purged, err
}
