// Package repo holds the pieces every GORM-backed repository shares.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by the domain repositories. Its handle is either the root
// connection or a transaction handed in through Rebind.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB scopes the handle to ctx. A nil ctx returns the handle untouched.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Rebind swaps in tx. A nil tx keeps the current handle.
func (b Base) Rebind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// First loads the row of T with the given primary key. Missing rows surface
// as gorm.ErrRecordNotFound.
func First[T any](db *gorm.DB, id uuid.UUID) (*T, error) {
	var row T
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateColumns writes updates to the row of T with the given id and stamps
// updated_at. The returned count is zero when no row matched.
func UpdateColumns[T any](db *gorm.DB, id uuid.UUID, updates map[string]any, now time.Time) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["updated_at"] = now.UTC()
	result := db.Model(new(T)).Where("id = ?", id).UpdateColumns(updates)
	return result.RowsAffected, result.Error
}
