package categories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/internal/repo"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
)

// Repository exposes persistence helpers for categories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]CategoryWithCount, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountReferences(ctx context.Context, id uuid.UUID) (References, error)
}

// CategoryWithCount pairs a category with the number of items filed under it.
type CategoryWithCount struct {
	models.Category
	ItemCount int64 `gorm:"column:item_count"`
}

// References counts the rows that block deleting a category.
type References struct {
	Items    int64
	Requests int64
}

func (r References) Any() bool {
	return r.Items > 0 || r.Requests > 0
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a categories repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{Base: r.Rebind(tx)}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return repo.First[models.Category](r.DB(ctx), id)
}

func (r *repositoryImpl) List(ctx context.Context) ([]CategoryWithCount, error) {
	var rows []CategoryWithCount
	if err := r.DB(ctx).
		Table("categories").
		Select("categories.*, (SELECT COUNT(*) FROM inventory_items WHERE inventory_items.category_id = categories.id) AS item_count").
		Order("categories.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Create(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	return r.DB(ctx).Create(category).Error
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	return repo.UpdateColumns[models.Category](r.DB(ctx), id, updates, time.Now())
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.Category{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountReferences(ctx context.Context, id uuid.UUID) (References, error) {
	var refs References
	if err := r.DB(ctx).Model(&models.InventoryItem{}).Where("category_id = ?", id).Count(&refs.Items).Error; err != nil {
		return References{}, err
	}
	if err := r.DB(ctx).Model(&models.ItemRequest{}).Where("category_id = ?", id).Count(&refs.Requests).Error; err != nil {
		return References{}, err
	}
	return refs, nil
}
