package catalog

import (
	"context"

	"github.com/MrSnakeDoc/cardshelf/internal/auth"
	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/export"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// ExportVisibleCards shapes every visible card, in listing order, into an
// export table. An empty catalog yields a table with no rows.
func (s *Service) ExportVisibleCards(ctx context.Context, credential string) (export.Table, error) {
	if err := s.authorize(ctx, credential, auth.OpAdmin); err != nil {
		return export.Table{}, err
	}
	cards, err := s.store.List(ctx, domain.Query{})
	if err != nil {
		return export.Table{}, err
	}
	s.log.Info("export built", logger.Int("rows", len(cards)))
	return export.Build(cards), nil
}
