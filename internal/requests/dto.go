package requests

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// RequestDTO is the transport shape of a request with denormalized names and
// its comments, oldest first.
type RequestDTO struct {
	ID              uuid.UUID             `json:"id"`
	Title           string                `json:"title"`
	Description     *string               `json:"description,omitempty"`
	CategoryID      uuid.UUID             `json:"categoryId"`
	CategoryName    *string               `json:"categoryName,omitempty"`
	ItemID          *uuid.UUID            `json:"itemId,omitempty"`
	ItemName        *string               `json:"itemName,omitempty"`
	Priority        enums.RequestPriority `json:"priority"`
	Status          enums.RequestStatus   `json:"status"`
	UserID          uuid.UUID             `json:"userId"`
	RequesterName   *string               `json:"requesterName,omitempty"`
	Quantity        int                   `json:"quantity"`
	TotalCost       *decimal.Decimal      `json:"totalCost,omitempty"`
	ApprovedAt      *time.Time            `json:"approvedAt,omitempty"`
	ApprovedBy      *uuid.UUID            `json:"approvedBy,omitempty"`
	RejectedAt      *time.Time            `json:"rejectedAt,omitempty"`
	RejectedBy      *uuid.UUID            `json:"rejectedBy,omitempty"`
	RejectionReason *string               `json:"rejectionReason,omitempty"`
	FulfillmentDate *time.Time            `json:"fulfillmentDate,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Comments        []CommentDTO          `json:"comments"`
}

// CommentDTO is the transport shape of a comment.
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"requestId"`
	UserID    uuid.UUID `json:"userId"`
	UserName  *string   `json:"userName,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateInput carries a new request. Ids are canonical by the time they reach
// the manager.
type CreateInput struct {
	Title       string
	Description *string
	CategoryID  uuid.UUID
	ItemID      *uuid.UUID
	UserID      uuid.UUID
	Priority    enums.RequestPriority
	Quantity    *int
	TotalCost   *decimal.Decimal
	Status      enums.RequestStatus
}

// Patch describes an update. A non-nil Status asks for a transition; the other
// fields are plain edits.
type Patch struct {
	Title           *string
	Description     *string
	Priority        *enums.RequestPriority
	Quantity        *int
	TotalCost       *decimal.Decimal
	CategoryID      *uuid.UUID
	ItemID          *uuid.UUID
	Status          *enums.RequestStatus
	RejectionReason *string
}

// editedFields lists the non-status fields present in the patch, in a stable
// order.
func (p Patch) editedFields() []string {
	fields := []string{}
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.Quantity != nil {
		fields = append(fields, "quantity")
	}
	if p.TotalCost != nil {
		fields = append(fields, "totalCost")
	}
	if p.CategoryID != nil {
		fields = append(fields, "categoryId")
	}
	if p.ItemID != nil {
		fields = append(fields, "itemId")
	}
	return fields
}

// withoutUnchanged clears fields that already hold the stored value, so a
// client resending the whole object only edits what actually differs.
func (p Patch) withoutUnchanged(current *models.ItemRequest) Patch {
	if p.Title != nil && strings.TrimSpace(*p.Title) == current.Title {
		p.Title = nil
	}
	if p.Description != nil && current.Description != nil && *p.Description == *current.Description {
		p.Description = nil
	}
	if p.Priority != nil && *p.Priority == current.Priority {
		p.Priority = nil
	}
	if p.Quantity != nil && *p.Quantity == current.Quantity {
		p.Quantity = nil
	}
	if p.TotalCost != nil && current.TotalCost.Valid && p.TotalCost.Equal(current.TotalCost.Decimal) {
		p.TotalCost = nil
	}
	if p.CategoryID != nil && *p.CategoryID == current.CategoryID {
		p.CategoryID = nil
	}
	if p.ItemID != nil && current.ItemID != nil && *p.ItemID == *current.ItemID {
		p.ItemID = nil
	}
	return p
}

func fromRow(row *RequestRow, comments []CommentDTO) RequestDTO {
	m := row.ItemRequest
	dto := RequestDTO{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		CategoryID:      m.CategoryID,
		CategoryName:    row.CategoryName,
		ItemID:          m.ItemID,
		ItemName:        row.ItemName,
		Priority:        m.Priority,
		Status:          m.Status,
		UserID:          m.UserID,
		RequesterName:   row.RequesterName,
		Quantity:        m.Quantity,
		ApprovedAt:      m.ApprovedAt,
		ApprovedBy:      m.ApprovedBy,
		RejectedAt:      m.RejectedAt,
		RejectedBy:      m.RejectedBy,
		RejectionReason: m.RejectionReason,
		FulfillmentDate: m.FulfillmentDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Comments:        comments,
	}
	if m.TotalCost.Valid {
		cost := m.TotalCost.Decimal
		dto.TotalCost = &cost
	}
	if dto.Comments == nil {
		dto.Comments = []CommentDTO{}
	}
	return dto
}

func commentFromRow(row *CommentRow) CommentDTO {
	return CommentDTO{
		ID:        row.ID,
		RequestID: row.RequestID,
		UserID:    row.UserID,
		UserName:  row.UserName,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
	}
}
