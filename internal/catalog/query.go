package catalog

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/cardshelf/internal/auth"
	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

// ListParams are the raw listing filters as a caller supplies them.
type ListParams struct {
	Search        string
	Category      string
	Subject       string
	IncludeHidden bool
	Credential    string
}

// ComposeQuery trims the filters. Empty values impose no predicate and
// nothing is ever rejected as malformed.
func ComposeQuery(p ListParams) domain.Query {
	return domain.Query{
		Search:        strings.TrimSpace(p.Search),
		Category:      strings.TrimSpace(p.Category),
		Subject:       strings.TrimSpace(p.Subject),
		IncludeHidden: p.IncludeHidden,
	}
}

// ListCards returns the matching cards in listing order. Asking for hidden
// cards needs an admin credential.
func (s *Service) ListCards(ctx context.Context, p ListParams) ([]domain.Card, error) {
	if p.IncludeHidden {
		if err := s.authorize(ctx, p.Credential, auth.OpAdmin); err != nil {
			return nil, err
		}
	}
	cards, err := s.store.List(ctx, ComposeQuery(p))
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return cards, nil
}
