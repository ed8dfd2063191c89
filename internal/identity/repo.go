package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// IDSource lists the canonical ids stored for an entity kind.
type IDSource interface {
	ListIDs(ctx context.Context, kind enums.EntityKind) ([]uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an IDSource backed by the relational store.
func NewRepository(db *gorm.DB) IDSource {
	return &repositoryImpl{db: db}
}

// ListIDs returns ids oldest first so the heuristic match is stable. A stored
// id that is not a UUID fails the whole listing.
func (r *repositoryImpl) ListIDs(ctx context.Context, kind enums.EntityKind) ([]uuid.UUID, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unsupported entity kind %q", kind)
	}

	var raw []string
	if err := r.db.WithContext(ctx).
		Table(string(kind)).
		Order("created_at ASC, id ASC").
		Pluck("id", &raw).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("%s row has malformed id %q: %w", kind, value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
