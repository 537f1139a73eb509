package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/cardshelf/internal/auth"
	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// GetCard returns a publicly visible card. Hidden cards are reported as not
// found.
func (s *Service) GetCard(ctx context.Context, id uint) (*domain.Card, error) {
	card, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !card.Visible() {
		return nil, fmt.Errorf("%w: card %d", domain.ErrNotFound, id)
	}
	return card, nil
}

// GetCardForModeration returns a card whatever its view.
func (s *Service) GetCardForModeration(ctx context.Context, id uint, credential string) (*domain.Card, error) {
	if err := s.authorize(ctx, credential, auth.OpAdmin); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// HideCard removes a card from public listings. Hiding an already hidden
// card succeeds without writing anything.
func (s *Service) HideCard(ctx context.Context, id uint, credential string) error {
	if err := s.authorize(ctx, credential, auth.OpAdmin); err != nil {
		return err
	}

	card, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !card.Visible() {
		s.log.Debug("card already hidden", logger.Uint("id", id))
		return nil
	}

	if _, err := s.store.SetVisibility(ctx, id, domain.ViewHidden); err != nil {
		return err
	}
	s.log.Info("card hidden", logger.Uint("id", id))
	s.record(ctx, domain.ModerationEvent{Kind: domain.EventHidden, CardID: id})
	return nil
}

// PurgeCard permanently deletes a hidden card. Visible cards must be hidden
// first.
func (s *Service) PurgeCard(ctx context.Context, id uint, credential string) error {
	if err := s.authorize(ctx, credential, auth.OpAdmin); err != nil {
		return err
	}

	card, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if card.Visible() {
		return fmt.Errorf("%w: card %d is visible, hide it before purging", domain.ErrConflict, id)
	}
	return s.purge(ctx, card)
}

// PurgeHiddenBefore permanently deletes every card hidden since before
// cutoff. It is the background purger's entry point and takes no credential.
// It returns how many cards were deleted along with any per-card failures.
func (s *Service) PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int, error) {
	cards, err := s.store.HiddenBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var (
		purged int
		errs   error
	)
	for i := range cards {
		if err := ctx.Err(); err != nil {
			return purged, multierr.Append(errs, err)
		}
		if err := s.purge(ctx, &cards[i]); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		purged++
	}
	return purged, errs
}

func (s *Service) purge(ctx context.Context, card *domain.Card) error {
	if err := s.store.Purge(ctx, card.ID); err != nil {
		return err
	}
	s.log.Warn("card purged",
		logger.Uint("id", card.ID),
		logger.String("url", card.URL))
	s.record(ctx, domain.ModerationEvent{Kind: domain.EventPurged, CardID: card.ID, Detail: card.URL})
	return nil
}
