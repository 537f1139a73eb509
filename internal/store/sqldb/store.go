package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// Store persists cards in a relational table through gorm.
// It keeps no state besides the connection pool.
type Store struct {
	db  *gorm.DB
	log logger.Logger
	now func() time.Time
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB, log logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With(logger.String("component", "card_store")),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the store that stamps rows with now.
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = func() time.Time { return now().UTC() }
	return &cp
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Create inserts a visible card at sortOrder.
func (s *Store) Create(ctx context.Context, f domain.CardFields, sortOrder int) (*domain.Card, error) {
	now := s.now()
	rec := cardRecord{
		URL:                f.URL,
		WebpageName:        f.WebpageName,
		UserSummary:        f.UserSummary,
		UsefulSubjects:     jsonList(f.UsefulSubjects),
		Keyword:            jsonList(f.Keyword),
		EducationalMeaning: f.EducationalMeaning,
		AICategory:         f.Category,
		View:               int(domain.ViewVisible),
		SortOrder:          sortOrder,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if f.ThumbnailURL != nil {
		rec.ThumbnailURL = *f.ThumbnailURL
	}

	if err := s.conn(ctx).Create(&rec).Error; err != nil {
		return nil, translate("create card", err)
	}
	card := rec.toDomain()
	return &card, nil
}

// Get returns the card with id regardless of its visibility.
func (s *Store) Get(ctx context.Context, id uint) (*domain.Card, error) {
	var rec cardRecord
	if err := s.conn(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("get card %d", id), err)
	}
	card := rec.toDomain()
	return &card, nil
}

// Update replaces the editable fields of a card and refreshes updated_at.
func (s *Store) Update(ctx context.Context, id uint, f domain.CardFields) (*domain.Card, error) {
	cols := editableColumns(f)
	cols["updated_at"] = s.now()
	if err := s.updateColumns(ctx, "update card", id, cols); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetVisibility moves a card between the visible and hidden states.
func (s *Store) SetVisibility(ctx context.Context, id uint, v domain.View) (*domain.Card, error) {
	cols := map[string]interface{}{"view": int(v), "updated_at": s.now()}
	if err := s.updateColumns(ctx, "set visibility", id, cols); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetSortOrder repositions a single card.
func (s *Store) SetSortOrder(ctx context.Context, id uint, sortOrder int) error {
	cols := map[string]interface{}{"sort_order": sortOrder, "updated_at": s.now()}
	return s.updateColumns(ctx, "set sort order", id, cols)
}

// ApplySortOrders repositions every pair inside one transaction. Unknown ids
// do not abort the batch; they are returned as missing. Any other failure
// rolls the whole batch back.
func (s *Store) ApplySortOrders(ctx context.Context, pairs []domain.SortPair) (missing []uint, err error) {
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		missing = missing[:0]
		now := s.now()
		for _, p := range pairs {
			res := tx.Model(&cardRecord{}).Where("id = ?", p.ID).
				Updates(map[string]interface{}{"sort_order": p.SortOrder, "updated_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				missing = append(missing, p.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate("apply sort orders", err)
	}
	return missing, nil
}

func (s *Store) updateColumns(ctx context.Context, op string, id uint, cols map[string]interface{}) error {
	res := s.conn(ctx).Model(&cardRecord{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

// List returns the cards matching q in listing order. When the table lacks
// the sort_order column the listing falls back to creation time.
func (s *Store) List(ctx context.Context, q domain.Query) ([]domain.Card, error) {
	var recs []cardRecord
	err := filter(s.conn(ctx).Model(&cardRecord{}), q).Order(orderManual).Find(&recs).Error
	if err != nil && ctx.Err() == nil && !s.hasSortOrder(ctx) {
		s.log.Warn("sort_order column unavailable, listing by creation time", logger.Error(err))
		recs = nil
		err = filter(s.conn(ctx).Model(&cardRecord{}), q).Order(orderByCreation).Find(&recs).Error
	}
	if err != nil {
		return nil, translate("list cards", err)
	}
	return toDomainList(recs), nil
}

func (s *Store) hasSortOrder(ctx context.Context) bool {
	return s.conn(ctx).Migrator().HasColumn(&cardRecord{}, "sort_order")
}

// FindByHost returns up to limit visible cards whose url contains host.
func (s *Store) FindByHost(ctx context.Context, host string, limit int) ([]domain.Card, error) {
	var recs []cardRecord
	tx := filter(s.conn(ctx).Model(&cardRecord{}), domain.Query{Limit: limit})
	if err := hostPredicate(tx, host).Order(orderManual).Find(&recs).Error; err != nil {
		return nil, translate("find cards by host", err)
	}
	return toDomainList(recs), nil
}

// ExistsVisibleURL reports whether a visible card other than excludeID uses url.
func (s *Store) ExistsVisibleURL(ctx context.Context, url string, excludeID uint) (bool, error) {
	var n int64
	tx := s.conn(ctx).Model(&cardRecord{}).Where("url = ? AND view = ?", url, int(domain.ViewVisible))
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&n).Error; err != nil {
		return false, translate("check url", err)
	}
	return n > 0, nil
}

// ExistsURL reports whether any card, hidden or not, uses url.
func (s *Store) ExistsURL(ctx context.Context, url string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&cardRecord{}).Where("url = ?", url).Count(&n).Error; err != nil {
		return false, translate("check url", err)
	}
	return n > 0, nil
}

// MaxSortOrder returns the highest sort_order; ok is false on an empty table.
func (s *Store) MaxSortOrder(ctx context.Context) (highest int, ok bool, err error) {
	var v sql.NullInt64
	row := s.conn(ctx).Model(&cardRecord{}).Select("MAX(sort_order)").Row()
	if err := row.Scan(&v); err != nil {
		return 0, false, translate("read max sort order", err)
	}
	return int(v.Int64), v.Valid, nil
}

// HiddenBefore lists hidden cards whose last change is older than cutoff.
func (s *Store) HiddenBefore(ctx context.Context, cutoff time.Time) ([]domain.Card, error) {
	var recs []cardRecord
	err := s.conn(ctx).
		Where("view = ? AND updated_at < ?", int(domain.ViewHidden), cutoff.UTC()).
		Order("updated_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, translate("list hidden cards", err)
	}
	return toDomainList(recs), nil
}

// Purge permanently deletes a card row.
func (s *Store) Purge(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&cardRecord{}, id)
	if res.Error != nil {
		return translate("purge card", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate("access pool", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return translate("ping database", err)
	}
	return nil
}
