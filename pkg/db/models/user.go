package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// User is the canonical identity of a requester or reviewer.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"type:text;not null"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"type:user_role;not null;default:user"`
	Department   *string        `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
