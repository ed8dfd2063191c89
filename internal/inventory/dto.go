package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gudangmitra/gudang-backend/pkg/db/models"
)

// ItemDTO is the transport shape of an inventory item.
type ItemDTO struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	CategoryID        uuid.UUID       `json:"categoryId"`
	SKU               *string         `json:"sku,omitempty"`
	QuantityAvailable int             `json:"quantityAvailable"`
	QuantityReserved  int             `json:"quantityReserved"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Location          *string         `json:"location,omitempty"`
	ImageURL          *string         `json:"imageUrl,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// CreateItemInput carries the fields accepted when stocking a new item.
type CreateItemInput struct {
	Name              string
	Description       *string
	CategoryID        uuid.UUID
	SKU               *string
	QuantityAvailable int
	QuantityReserved  int
	UnitPrice         *decimal.Decimal
	Location          *string
	ImageURL          *string
}

// UpdateItemInput holds optional admin edits. Reserved quantity is not editable.
type UpdateItemInput struct {
	Name              *string
	Description       *string
	CategoryID        *uuid.UUID
	SKU               *string
	QuantityAvailable *int
	UnitPrice         *decimal.Decimal
	Location          *string
	ImageURL          *string
}

func (in UpdateItemInput) isEmpty() bool {
	return in.Name == nil && in.Description == nil && in.CategoryID == nil && in.SKU == nil &&
		in.QuantityAvailable == nil && in.UnitPrice == nil && in.Location == nil && in.ImageURL == nil
}

// FromModel maps a persisted item to its DTO.
func FromModel(m *models.InventoryItem) ItemDTO {
	return ItemDTO{
		ID:                m.ID,
		Name:              m.Name,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		SKU:               m.SKU,
		QuantityAvailable: m.QuantityAvailable,
		QuantityReserved:  m.QuantityReserved,
		UnitPrice:         m.UnitPrice,
		Location:          m.Location,
		ImageURL:          m.ImageURL,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
