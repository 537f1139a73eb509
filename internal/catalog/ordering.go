package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/cardshelf/internal/auth"
	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// NonAtomicWarning is attached to a best-effort reorder that partly failed.
const NonAtomicWarning = "reorder is not atomic: some cards kept their previous position"

// ReorderEntry is one requested position. A zero ID or nil SortOrder makes
// the entry invalid; it is skipped rather than failing the batch.
type ReorderEntry struct {
	ID        uint `json:"id"`
	SortOrder *int `json:"sort_order"`
}

// ReorderFailure reports a card whose position could not be written.
type ReorderFailure struct {
	ID      uint   `json:"id"`
	Message string `json:"error"`

	err error
}

// ReorderResult tells the caller exactly which positions were written.
type ReorderResult struct {
	BatchID string           `json:"batch_id"`
	Atomic  bool             `json:"atomic"`
	Applied []uint           `json:"applied"`
	Missing []uint           `json:"missing"`
	Skipped []ReorderEntry   `json:"skipped"`
	Failed  []ReorderFailure `json:"failed"`
	Partial bool             `json:"partial"`
	Warning string           `json:"warning,omitempty"`
}

// Err combines the per-card failures, or returns nil when there were none.
func (r *ReorderResult) Err() error {
	var err error
	for _, f := range r.Failed {
		err = multierr.Append(err, fmt.Errorf("card %d: %w", f.ID, f.err))
	}
	return err
}

func newReorderResult(atomic bool) *ReorderResult {
	return &ReorderResult{
		BatchID: uuid.NewString(),
		Atomic:  atomic,
		Applied: []uint{},
		Missing: []uint{},
		Skipped: []ReorderEntry{},
		Failed:  []ReorderFailure{},
	}
}

// nextSortOrder applies the insertion policy for a new card.
func (s *Service) nextSortOrder(ctx context.Context) (int, error) {
	if s.policy != Append {
		return 0, nil
	}
	// An empty catalog reports 0, so the first card gets 1.
	highest, _, err := s.store.MaxSortOrder(ctx)
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

// ReorderCards assigns manual positions to a batch of cards. Unknown ids are
// reported as missing. In atomic mode any storage failure rolls the batch
// back; otherwise each card is written on its own and failures are listed.
func (s *Service) ReorderCards(ctx context.Context, entries []ReorderEntry, credential string) (*ReorderResult, error) {
	if err := s.authorize(ctx, credential, auth.OpAdmin); err != nil {
		return nil, err
	}

	res := newReorderResult(s.atomic)
	pairs := make([]domain.SortPair, 0, len(entries))
	for _, e := range entries {
		if e.ID == 0 || e.SortOrder == nil {
			res.Skipped = append(res.Skipped, e)
			continue
		}
		pairs = append(pairs, domain.SortPair{ID: e.ID, SortOrder: *e.SortOrder})
	}
	if len(pairs) == 0 {
		return res, nil
	}

	log := s.log.With(logger.String("batch_id", res.BatchID))
	var err error
	if s.atomic {
		err = s.reorderAtomic(ctx, pairs, res)
	} else {
		err = s.reorderEach(ctx, pairs, res)
	}
	if err != nil {
		log.Error("reorder failed", logger.Int("pairs", len(pairs)), logger.Error(err))
		return nil, err
	}

	if res.Partial {
		log.Warn(NonAtomicWarning,
			logger.Int("applied", len(res.Applied)),
			logger.Int("failed", len(res.Failed)))
	} else {
		log.Info("cards reordered",
			logger.Int("applied", len(res.Applied)),
			logger.Int("missing", len(res.Missing)),
			logger.Int("skipped", len(res.Skipped)))
	}
	s.record(ctx, domain.ModerationEvent{
		Kind:    domain.EventReordered,
		BatchID: res.BatchID,
		Detail:  fmt.Sprintf("applied=%d missing=%d failed=%d", len(res.Applied), len(res.Missing), len(res.Failed)),
	})
	return res, nil
}

func (s *Service) reorderAtomic(ctx context.Context, pairs []domain.SortPair, res *ReorderResult) error {
	missing, err := s.store.ApplySortOrders(ctx, pairs)
	if err != nil {
		return fmt.Errorf("failed to reorder batch %s: %w", res.BatchID, err)
	}

	absent := make(map[uint]struct{}, len(missing))
	for _, id := range missing {
		absent[id] = struct{}{}
	}
	res.Missing = append(res.Missing, missing...)
	for _, p := range pairs {
		if _, ok := absent[p.ID]; !ok {
			res.Applied = append(res.Applied, p.ID)
		}
	}
	return nil
}

func (s *Service) reorderEach(ctx context.Context, pairs []domain.SortPair, res *ReorderResult) error {
	for _, p := range pairs {
		err := s.store.SetSortOrder(ctx, p.ID, p.SortOrder)
		switch {
		case err == nil:
			res.Applied = append(res.Applied, p.ID)
		case errors.Is(err, domain.ErrNotFound):
			res.Missing = append(res.Missing, p.ID)
		default:
			res.Failed = append(res.Failed, ReorderFailure{ID: p.ID, Message: err.Error(), err: err})
		}
	}

	if len(res.Failed) == 0 {
		return nil
	}
	if len(res.Failed) == len(pairs) {
		return fmt.Errorf("failed to reorder batch %s: %w", res.BatchID, res.Err())
	}
	res.Partial = true
	res.Warning = NonAtomicWarning
	return nil
}
