// Package repo implements the ownership-scoping layer: every read and write
// on owned entities goes through these helpers so the owner predicate is
// applied once, at the repository boundary, and never supplied by callers.
package repo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means no row with the requested id exists at all.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden means the row exists but belongs to someone else.
	ErrForbidden = errors.New("record not owned by caller")
)

// OwnedBy restricts a query to rows owned by the given principal. It is the
// first scope applied to every query on Project (owner_id) and Task (user_id).
func OwnedBy(column string, ownerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s = ?", column), ownerID)
	}
}

// FindOwned loads a single entity by id under the ownership scope. A miss is
// disambiguated with an unscoped existence probe: 403 material if the row
// exists under another owner, 404 material if it does not exist at all.
func FindOwned[T any](db *gorm.DB, ownerColumn string, ownerID, id uuid.UUID) (*T, error) {
	var entity T
	err := db.Scopes(OwnedBy(ownerColumn, ownerID)).First(&entity, "id = ?", id).Error
	if err == nil {
		return &entity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var count int64
	if err := db.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrForbidden
	}
	return nil, ErrNotFound
}
