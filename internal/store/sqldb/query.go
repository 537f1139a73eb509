package sqldb

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

const (
	// orderManual is the listing order: manual position, then newest first.
	orderManual = "sort_order ASC, created_at DESC, id DESC"
	// orderByCreation is used when the table has no sort_order column.
	orderByCreation = "created_at DESC, id DESC"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere. Case folding is
// left to the database so that the column and the pattern go through the same
// LOWER; sqlite folds ASCII letters only, postgres folds by locale.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

const searchPredicate = `(LOWER(webpage_name) LIKE LOWER(?) ESCAPE '\' OR ` +
	`LOWER(user_summary) LIKE LOWER(?) ESCAPE '\' OR ` +
	`LOWER(ai_summary) LIKE LOWER(?) ESCAPE '\')`

// filter applies the visibility, search, category and subject predicates.
func filter(tx *gorm.DB, q domain.Query) *gorm.DB {
	if !q.IncludeHidden {
		tx = tx.Where("view = ?", int(domain.ViewVisible))
	}
	if q.Search != "" {
		p := containsPattern(q.Search)
		tx = tx.Where(searchPredicate, p, p, p)
	}
	if q.Category != "" {
		tx = tx.Where("ai_category = ?", q.Category)
	}
	if q.Subject != "" {
		tx = subjectContains(tx, q.Subject)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx
}

// subjectContains checks membership in the useful_subjects JSON array using
// the dialect's native JSON support.
func subjectContains(tx *gorm.DB, subject string) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		needle, _ := json.Marshal([]string{subject})
		return tx.Where("useful_subjects::jsonb @> ?::jsonb", string(needle))
	}
	// json_each fails on malformed text, so only valid rows are inspected.
	return tx.Where(`CASE WHEN json_valid(useful_subjects)
		THEN EXISTS (SELECT 1 FROM json_each(useful_subjects) WHERE json_each.value = ?)
		ELSE 0 END`, subject)
}

// hostPredicate matches urls containing host, case-insensitively.
func hostPredicate(tx *gorm.DB, host string) *gorm.DB {
	return tx.Where(`LOWER(url) LIKE LOWER(?) ESCAPE '\'`, containsPattern(host))
}
