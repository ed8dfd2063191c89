package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	"github.com/gudangmitra/gudang-backend/pkg/security"
)

// SeedAdminInput describes the bootstrap administrator.
type SeedAdminInput struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Password string
}

// SeedAdmin inserts the bootstrap administrator unless a user with the same id
// or email already exists. It reports whether a row was created.
func SeedAdmin(ctx context.Context, repo Repository, hasher passwordHasher, input SeedAdminInput) (bool, error) {
	if repo == nil || hasher == nil {
		return false, fmt.Errorf("repository and hasher required")
	}
	if input.ID == uuid.Nil {
		return false, fmt.Errorf("admin id required")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return false, err
	}
	if err := security.ValidatePassword(input.Password); err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}

	if _, err := repo.FindByID(ctx, input.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup admin by id: %w", err)
	}
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup admin by email: %w", err)
	}

	hash, err := hasher.Hash(input.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Administrator"
	}
	if err := repo.Create(ctx, &models.User{
		ID:           input.ID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
