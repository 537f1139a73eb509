package domain

import (
	"strings"
	"time"
)

// View is the moderation state of a card.
type View int

const (
	ViewHidden  View = 0
	ViewVisible View = 1
)

// Valid reports whether v is one of the two known states.
func (v View) Valid() bool { return v == ViewHidden || v == ViewVisible }

func (v View) String() string {
	if v == ViewVisible {
		return "visible"
	}
	return "hidden"
}

// Card represents a curated resource card.
//
// ─────────────────────────────────────────────
// Identity
// ─────────────────────────────────────────────
// ID is assigned by the store and never changes.
// URL is unique among visible cards.
//
// ─────────────────────────────────────────────
// Content
// ─────────────────────────────────────────────
// UsefulSubjects and Keyword are read back exactly as the store holds them,
// see FieldValue. Writes go through CardFields as plain string slices.
// LegacySummary is the descriptive text older rows carry; it is searchable
// but not editable.
//
// ─────────────────────────────────────────────
// Moderation / ordering
// ─────────────────────────────────────────────
// View hides a card from public listings without deleting it.
// SortOrder defines the manual order, lower first.
type Card struct {
	ID                 uint       `json:"id"`
	URL                string     `json:"url"`
	WebpageName        string     `json:"webpage_name"`
	UserSummary        string     `json:"user_summary"`
	UsefulSubjects     FieldValue `json:"useful_subjects"`
	Keyword            FieldValue `json:"keyword"`
	EducationalMeaning string     `json:"educational_meaning"`
	ThumbnailURL       string     `json:"thumbnail_url"`
	Category           string     `json:"ai_category,omitempty"`
	LegacySummary      string     `json:"ai_summary,omitempty"`
	View               View       `json:"view"`
	SortOrder          int        `json:"sort_order"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Visible reports whether the card shows up in public listings.
func (c *Card) Visible() bool { return c.View == ViewVisible }

// CardFields holds the editable fields of a card.
// ThumbnailURL and View are optional: nil leaves the stored value untouched on update.
type CardFields struct {
	URL                string
	WebpageName        string
	UserSummary        string
	UsefulSubjects     []string
	Keyword            []string
	EducationalMeaning string
	ThumbnailURL       *string
	Category           string
	View               *View
}

// Normalize trims text fields and applies set semantics to subjects.
// Keyword order and duplicates are kept; only blank entries are dropped.
func (f CardFields) Normalize() CardFields {
	f.URL = strings.TrimSpace(f.URL)
	f.WebpageName = strings.TrimSpace(f.WebpageName)
	f.UserSummary = strings.TrimSpace(f.UserSummary)
	f.EducationalMeaning = strings.TrimSpace(f.EducationalMeaning)
	f.Category = strings.TrimSpace(f.Category)
	f.UsefulSubjects = uniqueNonBlank(f.UsefulSubjects)
	f.Keyword = nonBlank(f.Keyword)
	if f.ThumbnailURL != nil {
		t := strings.TrimSpace(*f.ThumbnailURL)
		f.ThumbnailURL = &t
	}
	return f
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func uniqueNonBlank(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range nonBlank(in) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
