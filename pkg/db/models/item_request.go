package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// ItemRequest is a user's ask to draw from inventory.
type ItemRequest struct {
	ID              uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Title           string                `gorm:"type:text;not null"`
	Description     *string               `gorm:"type:text"`
	CategoryID      uuid.UUID             `gorm:"column:category_id;type:uuid;not null"`
	ItemID          *uuid.UUID            `gorm:"column:item_id;type:uuid"`
	Priority        enums.RequestPriority `gorm:"type:request_priority;not null;default:medium"`
	Status          enums.RequestStatus   `gorm:"type:request_status;not null;default:pending"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	Quantity        int                   `gorm:"not null;default:1"`
	TotalCost       decimal.NullDecimal   `gorm:"column:total_cost;type:numeric(12,2)"`
	ApprovedAt      *time.Time            `gorm:"column:approved_at"`
	ApprovedBy      *uuid.UUID            `gorm:"column:approved_by;type:uuid"`
	RejectedAt      *time.Time            `gorm:"column:rejected_at"`
	RejectedBy      *uuid.UUID            `gorm:"column:rejected_by;type:uuid"`
	RejectionReason *string               `gorm:"column:rejection_reason;type:text"`
	FulfillmentDate *time.Time            `gorm:"column:fulfillment_date"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (ItemRequest) TableName() string {
	return "item_requests"
}
