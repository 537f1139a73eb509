// Package catalog implements the card operations: listing, creation, edits,
// moderation, ordering, duplicate hints and export.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/MrSnakeDoc/cardshelf/internal/auth"
	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// Store is the persistence the catalog needs. *sqldb.Store implements it.
type Store interface {
	Create(ctx context.Context, f domain.CardFields, sortOrder int) (*domain.Card, error)
	Get(ctx context.Context, id uint) (*domain.Card, error)
	Update(ctx context.Context, id uint, f domain.CardFields) (*domain.Card, error)
	SetVisibility(ctx context.Context, id uint, v domain.View) (*domain.Card, error)
	SetSortOrder(ctx context.Context, id uint, sortOrder int) error
	ApplySortOrders(ctx context.Context, pairs []domain.SortPair) ([]uint, error)
	List(ctx context.Context, q domain.Query) ([]domain.Card, error)
	FindByHost(ctx context.Context, host string, limit int) ([]domain.Card, error)
	ExistsVisibleURL(ctx context.Context, url string, excludeID uint) (bool, error)
	ExistsURL(ctx context.Context, url string) (bool, error)
	MaxSortOrder(ctx context.Context) (int, bool, error)
	HiddenBefore(ctx context.Context, cutoff time.Time) ([]domain.Card, error)
	Purge(ctx context.Context, id uint) error
	Ping(ctx context.Context) error
}

// Auditor records moderation events. Recording is best effort: a failure is
// logged and never fails the operation that produced the event.
type Auditor interface {
	Record(ctx context.Context, ev domain.ModerationEvent) error
	Recent(ctx context.Context, n int64) ([]domain.ModerationEvent, error)
}

// InsertionPolicy decides where new cards land in the manual order.
type InsertionPolicy string

const (
	// Prepend gives new cards sort_order 0; creation time breaks the tie so
	// the newest card lists first.
	Prepend InsertionPolicy = "prepend"
	// Append gives new cards one more than the current highest sort_order.
	Append InsertionPolicy = "append"
)

// DefaultThumbnailPlaceholder is prefixed to the escaped webpage name when a
// card is created without a thumbnail.
const DefaultThumbnailPlaceholder = "https://via.placeholder.com/400x300?text="

// Options tunes a Service. The zero value is usable.
type Options struct {
	Policy               InsertionPolicy
	AtomicReorder        bool
	ThumbnailPlaceholder string
	Auditor              Auditor
	Now                  func() time.Time
}

// Service is the catalog core. It holds no mutable state, so one value is
// shared by every request.
type Service struct {
	store     Store
	auth      auth.Authorizer
	audit     Auditor
	log       logger.Logger
	policy    InsertionPolicy
	atomic    bool
	thumbBase string
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// New builds a Service. A nil authorizer denies every privileged call.
func New(store Store, authz auth.Authorizer, log logger.Logger, opts Options) *Service {
	if authz == nil {
		authz = auth.DenyAll
	}
	if opts.Policy == "" {
		opts.Policy = Prepend
	}
	if opts.ThumbnailPlaceholder == "" {
		opts.ThumbnailPlaceholder = DefaultThumbnailPlaceholder
	}
	if opts.Auditor == nil {
		opts.Auditor = nopAuditor{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		store:     store,
		auth:      authz,
		audit:     opts.Auditor,
		log:       log.With(logger.String("component", "catalog")),
		policy:    opts.Policy,
		atomic:    opts.AtomicReorder,
		thumbBase: opts.ThumbnailPlaceholder,
		sanitizer: bluemonday.UGCPolicy(),
		now:       opts.Now,
	}
}

// Ping reports whether the backing store answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CreateCard validates and stores a new visible card. It needs no credential.
func (s *Service) CreateCard(ctx context.Context, f domain.CardFields) (*domain.Card, error) {
	f, err := s.prepare(f)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, f)
}

// ImportCard is CreateCard for bulk loaders. A url that is already stored
// conflicts even when its card is hidden, so a moderated card stays hidden
// across repeated imports.
func (s *Service) ImportCard(ctx context.Context, f domain.CardFields) (*domain.Card, error) {
	f, err := s.prepare(f)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.ExistsURL(ctx, f.URL)
	if err != nil {
		return nil, err
	}
	if stored {
		return nil, fmt.Errorf("%w: url %q is already stored", domain.ErrConflict, f.URL)
	}
	return s.create(ctx, f)
}

func (s *Service) create(ctx context.Context, f domain.CardFields) (*domain.Card, error) {
	f.View = nil
	if f.ThumbnailURL == nil || *f.ThumbnailURL == "" {
		thumb := s.placeholder(f.WebpageName)
		f.ThumbnailURL = &thumb
	}

	taken, err := s.store.ExistsVisibleURL(ctx, f.URL, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: url %q is already listed", domain.ErrConflict, f.URL)
	}

	sortOrder, err := s.nextSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	card, err := s.store.Create(ctx, f, sortOrder)
	if err != nil {
		return nil, err
	}

	s.log.Info("card created",
		logger.Uint("id", card.ID),
		logger.String("url", card.URL),
		logger.Int("sort_order", card.SortOrder))
	s.record(ctx, domain.ModerationEvent{Kind: domain.EventCreated, CardID: card.ID, Detail: card.URL})
	return card, nil
}

// UpdateCard replaces the editable fields of a card. Setting View changes
// moderation state and therefore needs an admin credential; other edits need
// an edit credential. An empty Category keeps the stored one.
func (s *Service) UpdateCard(ctx context.Context, id uint, f domain.CardFields, credential string) (*domain.Card, error) {
	op := auth.OpEdit
	if f.View != nil {
		if !f.View.Valid() {
			return nil, fmt.Errorf("%w: unknown view %d", domain.ErrValidation, *f.View)
		}
		op = auth.OpAdmin
	}
	if err := s.authorize(ctx, credential, op); err != nil {
		return nil, err
	}

	f, err := s.prepare(f)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Category == "" {
		f.Category = current.Category
	}
	if f.ThumbnailURL != nil && *f.ThumbnailURL == "" {
		thumb := s.placeholder(f.WebpageName)
		f.ThumbnailURL = &thumb
	}

	next := current.View
	if f.View != nil {
		next = *f.View
	}
	if next == domain.ViewVisible && (f.URL != current.URL || !current.Visible()) {
		taken, err := s.store.ExistsVisibleURL(ctx, f.URL, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: url %q is already listed", domain.ErrConflict, f.URL)
		}
	}

	card, err := s.store.Update(ctx, id, f)
	if err != nil {
		return nil, err
	}

	kind := domain.EventUpdated
	switch {
	case current.View != card.View && card.Visible():
		kind = domain.EventRestored
	case current.View != card.View:
		kind = domain.EventHidden
	}
	s.log.Info("card updated", logger.Uint("id", id), logger.String("event", string(kind)))
	s.record(ctx, domain.ModerationEvent{Kind: kind, CardID: id})
	return card, nil
}

// ModerationEvents returns the newest n audit entries, newest first.
func (s *Service) ModerationEvents(ctx context.Context, n int64, credential string) ([]domain.ModerationEvent, error) {
	if err := s.authorize(ctx, credential, auth.OpAdmin); err != nil {
		return nil, err
	}
	events, err := s.audit.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%w: read moderation events: %w", domain.ErrStorage, err)
	}
	if events == nil {
		events = []domain.ModerationEvent{}
	}
	return events, nil
}

func (s *Service) authorize(ctx context.Context, credential string, op auth.Operation) error {
	if !s.auth.Allow(ctx, credential, op) {
		return fmt.Errorf("%w: %s credential required", domain.ErrUnauthorized, op)
	}
	return nil
}

// prepare normalizes f, strips markup from the free-text fields and checks
// the required ones.
func (s *Service) prepare(f domain.CardFields) (domain.CardFields, error) {
	f = f.Normalize()
	f.UserSummary = strings.TrimSpace(s.sanitizer.Sanitize(f.UserSummary))
	f.EducationalMeaning = strings.TrimSpace(s.sanitizer.Sanitize(f.EducationalMeaning))

	switch {
	case f.URL == "":
		return f, fmt.Errorf("%w: url is required", domain.ErrValidation)
	case f.WebpageName == "":
		return f, fmt.Errorf("%w: webpage_name is required", domain.ErrValidation)
	}
	return f, nil
}

func (s *Service) placeholder(name string) string {
	return s.thumbBase + url.QueryEscape(name)
}

func (s *Service) record(ctx context.Context, ev domain.ModerationEvent) {
	ev.At = s.now()
	if err := s.audit.Record(ctx, ev); err != nil {
		s.log.Warn("failed to record moderation event",
			logger.String("kind", string(ev.Kind)),
			logger.Uint("card_id", ev.CardID),
			logger.Error(err))
	}
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, domain.ModerationEvent) error { return nil }

func (nopAuditor) Recent(context.Context, int64) ([]domain.ModerationEvent, error) {
	return nil, nil
}
