package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/internal/repo"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter ListFilter) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountRequestReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

// ListFilter narrows List results.
type ListFilter struct {
	Role   *enums.UserRole
	Search string
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{Base: r.Rebind(tx)}
}

// Create inserts a new user, assigning an id when absent.
func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.DB(ctx).Create(user).Error
}

// FindByEmail retrieves the user matching the provided email.
func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return repo.First[models.User](r.DB(ctx), id)
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.User, error) {
	query := r.DB(ctx).Model(&models.User{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR email LIKE ?)", like, like)
	}

	var users []models.User
	if err := query.Order("name ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	return repo.UpdateColumns[models.User](r.DB(ctx), id, updates, time.Now())
}

// UpdatePasswordHash replaces the stored hash, used after a parameter upgrade.
func (r *repositoryImpl) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.User{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountRequestReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.ItemRequest{}).
		Where("user_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
