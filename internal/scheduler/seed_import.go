package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/sources/seed"
)

// CardCreator is the part of the catalog the importer writes through.
// ImportCard must conflict on any stored url, hidden cards included.
type CardCreator interface {
	ImportCard(ctx context.Context, f domain.CardFields) (*domain.Card, error)
}

// ImportStats summarizes one import run.
type ImportStats struct {
	Created int
	Skipped int // url already stored, hidden or not
	Invalid int // rejected by validation
	Failed  int
}

// SeedImporter creates catalog cards from a curated YAML file, at startup,
// on an interval and on manual trigger. Cards whose url is already stored are
// left alone, so repeated runs never bring back a hidden card.
type SeedImporter struct {
	loader  *seed.Loader
	catalog CardCreator
	logger  logger.Logger
	loop    *loop
	started atomic.Bool
}

// NewSeedImporter creates an importer for seedFile. interval <= 0 imports
// only at startup and on trigger.
func NewSeedImporter(
	seedFile string,
	catalog CardCreator,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *SeedImporter {
	return &SeedImporter{
		loader:  seed.NewLoader(seedFile),
		catalog: catalog,
		logger:  log.With(logger.String("component", "seed_import"), logger.String("file", seedFile)),
		loop:    newLoop(interval, manualTrigger),
	}
}

// Start imports once, then keeps importing in the background.
func (si *SeedImporter) Start(ctx context.Context) error {
	if _, err := si.Import(ctx); err != nil {
		return fmt.Errorf("initial seed import failed: %w", err)
	}

	si.started.Store(true)
	si.loop.run(ctx,
		func(ctx context.Context) { si.importLogged(ctx) },
		func(ctx context.Context) {
			si.logger.Info("manual seed import triggered")
			si.importLogged(ctx)
		})
	return nil
}

// Stop stops the importer and waits for a running import to finish.
func (si *SeedImporter) Stop() {
	si.loop.stop(si.started.Load())
}

func (si *SeedImporter) importLogged(ctx context.Context) {
	if _, err := si.Import(ctx); err != nil {
		si.logger.Error("failed to import seed cards", logger.Error(err))
	}
}

// Import loads the seed file and creates the cards it lists.
func (si *SeedImporter) Import(ctx context.Context) (ImportStats, error) {
	var stats ImportStats

	file, err := si.loader.Load()
	if err != nil {
		return stats, fmt.Errorf("failed to load seed file: %w", err)
	}
	cards, err := seed.MapCards(file)
	if err != nil {
		return stats, fmt.Errorf("failed to map seed cards: %w", err)
	}

	var errs error
	for _, f := range cards {
		if err := ctx.Err(); err != nil {
			return stats, multierr.Append(errs, err)
		}

		_, err := si.catalog.ImportCard(ctx, f)
		switch {
		case err == nil:
			stats.Created++
		case errors.Is(err, domain.ErrConflict):
			stats.Skipped++
		case errors.Is(err, domain.ErrValidation):
			stats.Invalid++
			si.logger.Warn("seed card rejected", logger.String("url", f.URL), logger.Error(err))
		default:
			stats.Failed++
			errs = multierr.Append(errs, fmt.Errorf("card %q: %w", f.URL, err))
		}
	}

	si.logger.Info("seed import completed",
		logger.Int("created", stats.Created),
		logger.Int("skipped", stats.Skipped),
		logger.Int("invalid", stats.Invalid),
		logger.Int("failed", stats.Failed))
	return stats, errs
}
