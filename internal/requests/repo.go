package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/internal/repo"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// Repository exposes persistence helpers for item requests and their comments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*RequestRow, error)
	List(ctx context.Context, filter ListFilter) ([]RequestRow, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.ItemRequest, error)
	Create(ctx context.Context, request *models.ItemRequest) error
	UpdateIfStatus(ctx context.Context, id uuid.UUID, expected enums.RequestStatus, updates map[string]any) (int64, error)
	DeleteIfStatus(ctx context.Context, id uuid.UUID, expected enums.RequestStatus) (int64, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, requestIDs []uuid.UUID) ([]CommentRow, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
}

// ListFilter narrows List results. Nil fields are ignored.
type ListFilter struct {
	UserID     *uuid.UUID
	Status     *enums.RequestStatus
	CategoryID *uuid.UUID
	Priority   *enums.RequestPriority
}

// RequestRow is a request joined with the names of the rows it references.
type RequestRow struct {
	models.ItemRequest
	CategoryName  *string `gorm:"column:category_name"`
	RequesterName *string `gorm:"column:requester_name"`
	ItemName      *string `gorm:"column:item_name"`
}

// CommentRow is a comment joined with its author's name.
type CommentRow struct {
	models.Comment
	UserName *string `gorm:"column:user_name"`
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a requests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{Base: r.Rebind(tx)}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error) {
	return repo.First[models.ItemRequest](r.DB(ctx), id)
}

func (r *repositoryImpl) detailQuery(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("item_requests AS r").
		Select("r.*, c.name AS category_name, u.name AS requester_name, i.name AS item_name").
		Joins("LEFT JOIN categories c ON c.id = r.category_id").
		Joins("LEFT JOIN users u ON u.id = r.user_id").
		Joins("LEFT JOIN inventory_items i ON i.id = r.item_id")
}

func (r *repositoryImpl) FindDetail(ctx context.Context, id uuid.UUID) (*RequestRow, error) {
	var rows []RequestRow
	if err := r.detailQuery(ctx).Where("r.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]RequestRow, error) {
	query := r.detailQuery(ctx)
	if filter.UserID != nil {
		query = query.Where("r.user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("r.status = ?", *filter.Status)
	}
	if filter.CategoryID != nil {
		query = query.Where("r.category_id = ?", *filter.CategoryID)
	}
	if filter.Priority != nil {
		query = query.Where("r.priority = ?", *filter.Priority)
	}

	var rows []RequestRow
	if err := query.Order("r.created_at DESC, r.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.ItemRequest, error) {
	var rows []models.ItemRequest
	if err := r.DB(ctx).
		Where("status = ? AND created_at < ?", enums.RequestStatusPending, cutoff).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Create(ctx context.Context, request *models.ItemRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	return r.DB(ctx).Create(request).Error
}

// UpdateIfStatus applies updates only while the row still has the expected
// status. Zero rows affected means the request is gone or changed underneath.
func (r *repositoryImpl) UpdateIfStatus(ctx context.Context, id uuid.UUID, expected enums.RequestStatus, updates map[string]any) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	result := r.DB(ctx).
		Model(&models.ItemRequest{}).
		Where("id = ? AND status = ?", id, expected).
		UpdateColumns(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteIfStatus(ctx context.Context, id uuid.UUID, expected enums.RequestStatus) (int64, error) {
	result := r.DB(ctx).
		Where("id = ? AND status = ?", id, expected).
		Delete(&models.ItemRequest{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return r.DB(ctx).Create(comment).Error
}

func (r *repositoryImpl) ListComments(ctx context.Context, requestIDs []uuid.UUID) ([]CommentRow, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	var rows []CommentRow
	if err := r.DB(ctx).
		Table("comments AS cm").
		Select("cm.*, u.name AS user_name").
		Joins("LEFT JOIN users u ON u.id = cm.user_id").
		Where("cm.request_id IN ?", requestIDs).
		Order("cm.created_at ASC, cm.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return repo.First[models.User](r.DB(ctx), id)
}

func (r *repositoryImpl) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) FindItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return repo.First[models.InventoryItem](r.DB(ctx), id)
}
