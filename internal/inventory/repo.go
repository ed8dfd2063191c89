package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gudangmitra/gudang-backend/internal/repo"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
)

// Repository exposes persistence helpers for inventory items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Reserve(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	Release(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	CountRequestReferences(ctx context.Context, id uuid.UUID) (int64, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListFilter narrows List results.
type ListFilter struct {
	CategoryID *uuid.UUID
	Search     string
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{Base: r.Rebind(tx)}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return repo.First[models.InventoryItem](r.DB(ctx), id)
}

func (r *repositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error) {
	query := r.DB(ctx).Model(&models.InventoryItem{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ?)", like, like)
	}

	var items []models.InventoryItem
	if err := query.Order("name ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.DB(ctx).Create(item).Error
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	return repo.UpdateColumns[models.InventoryItem](r.DB(ctx), id, updates, time.Now())
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	return result.RowsAffected, result.Error
}

// Reserve moves qty from available to reserved in one conditional write.
// Zero rows affected means the row is missing or short on stock.
func (r *repositoryImpl) Reserve(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	result := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND quantity_available >= ?", id, qty).
		UpdateColumns(map[string]any{
			"quantity_available": gorm.Expr("quantity_available - ?", qty),
			"quantity_reserved":  gorm.Expr("quantity_reserved + ?", qty),
			"updated_at":         time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// Release moves qty from reserved back to available. Callers clamp qty first.
func (r *repositoryImpl) Release(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	result := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND quantity_reserved >= ?", id, qty).
		UpdateColumns(map[string]any{
			"quantity_available": gorm.Expr("quantity_available + ?", qty),
			"quantity_reserved":  gorm.Expr("quantity_reserved - ?", qty),
			"updated_at":         time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountRequestReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.ItemRequest{}).
		Where("item_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repositoryImpl) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
