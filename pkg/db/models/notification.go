package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// Notification stores in-app notifications addressed to a single user.
type Notification struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	Type          enums.NotificationType `gorm:"type:notification_type;not null"`
	Message       string                 `gorm:"type:text;not null"`
	IsRead        bool                   `gorm:"column:is_read;not null;default:false"`
	ReadAt        *time.Time             `gorm:"column:read_at"`
	RelatedItemID *uuid.UUID             `gorm:"column:related_item_id;type:uuid"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
