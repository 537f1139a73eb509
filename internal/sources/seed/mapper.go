package seed

import (
	"errors"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

// ErrEmpty is returned when a seed file holds no usable card.
var ErrEmpty = errors.New("no valid cards found in seed file")

// MapCards converts a seed file into card fields. List items keep file order;
// keys sharing one map (several categories in a group, several names in an
// entry) come out sorted, so the result is the same on every run. Entries
// without a name or an absolute http(s) href are skipped.
func MapCards(file File) ([]domain.CardFields, error) {
	var cards []domain.CardFields

	for _, group := range file {
		for _, category := range slices.Sorted(maps.Keys(group)) {
			for _, entry := range group[category] {
				for _, name := range slices.Sorted(maps.Keys(entry)) {
					props := entry[name]
					name = strings.TrimSpace(name)
					href := strings.TrimSpace(props.Href)
					if name == "" || !validHref(href) {
						continue
					}

					f := domain.CardFields{
						URL:                href,
						WebpageName:        name,
						UserSummary:        props.Summary,
						UsefulSubjects:     props.Subjects,
						Keyword:            props.Keywords,
						EducationalMeaning: props.Meaning,
						Category:           strings.TrimSpace(category),
					}
					if thumb := strings.TrimSpace(props.Thumbnail); thumb != "" {
						f.ThumbnailURL = &thumb
					}
					cards = append(cards, f.Normalize())
				}
			}
		}
	}

	if len(cards) == 0 {
		return nil, ErrEmpty
	}
	return cards, nil
}

func validHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Hostname() == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
