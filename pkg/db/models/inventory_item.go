package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem tracks available/reserved counts for a stocked item.
type InventoryItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name              string          `gorm:"type:text;not null"`
	Description       *string         `gorm:"type:text"`
	CategoryID        uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	SKU               *string         `gorm:"column:sku;type:text"`
	QuantityAvailable int             `gorm:"column:quantity_available;not null;default:0"`
	QuantityReserved  int             `gorm:"column:quantity_reserved;not null;default:0"`
	UnitPrice         decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	Location          *string         `gorm:"type:text"`
	ImageURL          *string         `gorm:"column:image_url;type:text"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
