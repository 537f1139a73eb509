package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

// MaxDuplicateHints caps the cards returned by CheckDuplicates.
const MaxDuplicateHints = 5

// CheckDuplicates returns visible cards whose url contains the hostname of
// rawURL. Matching is a substring test, so the result is only a hint.
func (s *Service) CheckDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error) {
	host, err := Hostname(rawURL)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.FindByHost(ctx, host, MaxDuplicateHints)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return cards, nil
}

// Hostname extracts the lowercased host of rawURL, assuming http when the
// scheme is missing.
func Hostname(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrValidation)
	}

	candidate := rawURL
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: cannot parse url %q", domain.ErrValidation, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: url %q has no hostname", domain.ErrValidation, rawURL)
	}
	return host, nil
}
