package sqldb

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

// TableName is the relational table holding cards.
const TableName = "edutech_cards"

// cardRecord is the persisted row. Multi-valued fields stay raw JSON here and
// are classified into domain.FieldValue on the way out.
type cardRecord struct {
	ID                 uint           `gorm:"column:id;primaryKey"`
	URL                string         `gorm:"column:url;not null;index"`
	WebpageName        string         `gorm:"column:webpage_name;not null"`
	UserSummary        string         `gorm:"column:user_summary;not null;default:''"`
	UsefulSubjects     datatypes.JSON `gorm:"column:useful_subjects"`
	Keyword            datatypes.JSON `gorm:"column:keyword"`
	EducationalMeaning string         `gorm:"column:educational_meaning;not null;default:''"`
	ThumbnailURL       string         `gorm:"column:thumbnail_url;not null;default:''"`
	AICategory         string         `gorm:"column:ai_category;not null;default:'';index"`
	AISummary          string         `gorm:"column:ai_summary;not null;default:''"`
	View               int            `gorm:"column:view;not null;index"`
	SortOrder          int            `gorm:"column:sort_order;not null;index"`
	CreatedAt          time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;not null"`
}

func (cardRecord) TableName() string { return TableName }

func (r cardRecord) toDomain() domain.Card {
	return domain.Card{
		ID:                 r.ID,
		URL:                r.URL,
		WebpageName:        r.WebpageName,
		UserSummary:        r.UserSummary,
		UsefulSubjects:     domain.DecodeFieldValue(r.UsefulSubjects),
		Keyword:            domain.DecodeFieldValue(r.Keyword),
		EducationalMeaning: r.EducationalMeaning,
		ThumbnailURL:       r.ThumbnailURL,
		Category:           r.AICategory,
		LegacySummary:      r.AISummary,
		View:               domain.View(r.View),
		SortOrder:          r.SortOrder,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

func toDomainList(recs []cardRecord) []domain.Card {
	out := make([]domain.Card, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDomain())
	}
	return out
}

// jsonList encodes a string slice as a JSON array, never null.
func jsonList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}

// editableColumns maps CardFields onto column assignments for an update.
func editableColumns(f domain.CardFields) map[string]interface{} {
	cols := map[string]interface{}{
		"url":                 f.URL,
		"webpage_name":        f.WebpageName,
		"user_summary":        f.UserSummary,
		"useful_subjects":     jsonList(f.UsefulSubjects),
		"keyword":             jsonList(f.Keyword),
		"educational_meaning": f.EducationalMeaning,
		"ai_category":         f.Category,
	}
	if f.ThumbnailURL != nil {
		cols["thumbnail_url"] = *f.ThumbnailURL
	}
	if f.View != nil {
		cols["view"] = int(*f.View)
	}
	return cols
}
