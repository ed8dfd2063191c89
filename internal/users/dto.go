package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Role       enums.UserRole `json:"role"`
	Department *string        `json:"department,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// CreateUserInput holds the data required to create a user. An empty password
// asks the service to generate a temporary one.
type CreateUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       enums.UserRole
	Department *string
}

// CreateUserResult returns the created user plus any generated password.
type CreateUserResult struct {
	User         *UserDTO `json:"user"`
	TempPassword *string  `json:"tempPassword,omitempty"`
}

// UpdateUserInput holds optional profile edits.
type UpdateUserInput struct {
	Name       *string
	Email      *string
	Role       *enums.UserRole
	Department *string
	Password   *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
