package sqldb

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

// translate maps a driver error onto the catalog error kinds.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s: url already used by a visible card", domain.ErrConflict, op)
	default:
		return fmt.Errorf("%w: failed to %s: %w", domain.ErrStorage, op, err)
	}
}

// isUniqueViolation recognizes duplicate-key errors. TranslateError covers the
// bundled drivers; the message checks catch drivers that bypass it.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func notFound(id uint) error {
	return fmt.Errorf("%w: card %d", domain.ErrNotFound, id)
}
