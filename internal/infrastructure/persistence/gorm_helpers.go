package persistence

import (
	"errors"

	"github.com/restaurant/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row lock held until the surrounding transaction ends.
// Dialects without row locks (sqlite) drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
