package sqldb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// uniqueVisibleURL enforces url uniqueness among visible cards only, so a
// hidden card never blocks re-adding its url.
const uniqueVisibleURL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_edutech_cards_url_visible
	ON edutech_cards (url) WHERE view = 1`

// Migrate creates or updates the card table and its indexes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(&cardRecord{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", TableName, err)
	}
	if err := tx.Exec(uniqueVisibleURL).Error; err != nil {
		return fmt.Errorf("failed to create visible url index: %w", err)
	}
	return nil
}
