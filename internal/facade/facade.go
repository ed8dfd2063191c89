// Package facade is the single entry point transports use. It reconciles raw
// ids into canonical ones and guarantees every error it returns is typed.
package facade

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gudangmitra/gudang-backend/internal/categories"
	"github.com/gudangmitra/gudang-backend/internal/inventory"
	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

const storeErrorMessage = "store error"

type resolver interface {
	ResolveAny(ctx context.Context, raw any, kind enums.EntityKind) (uuid.UUID, error)
	ResolveOptional(ctx context.Context, raw any, kind enums.EntityKind) (*uuid.UUID, error)
}

// Params bundles the façade collaborators.
type Params struct {
	IDs           resolver
	Requests      requests.Manager
	Inventory     inventory.Service
	Categories    categories.Service
	Users         users.Service
	Notifications notifications.Service
}

type Facade struct {
	ids           resolver
	requests      requests.Manager
	inventory     inventory.Service
	categories    categories.Service
	users         users.Service
	notifications notifications.Service
}

// New validates and wires the façade.
func New(params Params) (*Facade, error) {
	switch {
	case params.IDs == nil:
		return nil, fmt.Errorf("id resolver required")
	case params.Requests == nil:
		return nil, fmt.Errorf("requests manager required")
	case params.Inventory == nil:
		return nil, fmt.Errorf("inventory service required")
	case params.Categories == nil:
		return nil, fmt.Errorf("categories service required")
	case params.Users == nil:
		return nil, fmt.Errorf("users service required")
	case params.Notifications == nil:
		return nil, fmt.Errorf("notifications service required")
	}
	return &Facade{
		ids:           params.IDs,
		requests:      params.Requests,
		inventory:     params.Inventory,
		categories:    params.Categories,
		users:         params.Users,
		notifications: params.Notifications,
	}, nil
}

func typed(err error) error {
	return pkgerrors.Store(err, storeErrorMessage)
}

// RequestQuery filters GetAll. Zero values are ignored.
type RequestQuery struct {
	UserID     any
	Status     string
	CategoryID any
	Priority   string
}

// CreateRequestInput is the raw create payload. A missing UserID defaults to
// the actor.
type CreateRequestInput struct {
	Title       string
	Description *string
	CategoryID  any
	ItemID      any
	UserID      any
	Priority    string
	Quantity    *int
	TotalCost   *decimal.Decimal
	Status      string
}

// UpdateRequestInput is the raw update payload. Nil fields are left alone.
type UpdateRequestInput struct {
	ID              any
	Title           *string
	Description     *string
	Priority        *string
	Quantity        *int
	TotalCost       *decimal.Decimal
	CategoryID      any
	ItemID          any
	Status          *string
	RejectionReason *string
}

// CommentInput is the raw addComment payload.
type CommentInput struct {
	RequestID any
	Content   string
}

func (f *Facade) GetAll(ctx context.Context, query RequestQuery) ([]requests.RequestDTO, error) {
	filter := requests.ListFilter{}
	var err error
	if filter.UserID, err = f.ids.ResolveOptional(ctx, query.UserID, enums.EntityKindUsers); err != nil {
		return nil, typed(err)
	}
	if filter.CategoryID, err = f.ids.ResolveOptional(ctx, query.CategoryID, enums.EntityKindCategories); err != nil {
		return nil, typed(err)
	}
	if s := strings.TrimSpace(query.Status); s != "" {
		status, err := enums.ParseRequestStatus(s)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filter.Status = &status
	}
	if p := strings.TrimSpace(query.Priority); p != "" {
		priority, err := enums.ParseRequestPriority(p)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		filter.Priority = &priority
	}

	out, err := f.requests.List(ctx, filter)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) GetByID(ctx context.Context, rawID any) (*requests.RequestDTO, error) {
	id, err := parseRequestID(rawID)
	if err != nil {
		return nil, err
	}
	out, err := f.requests.Get(ctx, id)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) Create(ctx context.Context, input CreateRequestInput, actor requests.Actor) (*requests.RequestDTO, error) {
	userID := actor.UserID
	if input.UserID != nil {
		resolved, err := f.ids.ResolveOptional(ctx, input.UserID, enums.EntityKindUsers)
		if err != nil {
			return nil, typed(err)
		}
		if resolved != nil {
			userID = *resolved
		}
	}
	categoryID, err := f.ids.ResolveOptional(ctx, input.CategoryID, enums.EntityKindCategories)
	if err != nil {
		return nil, typed(err)
	}
	if categoryID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryId is required")
	}
	itemID, err := f.ids.ResolveOptional(ctx, input.ItemID, enums.EntityKindInventoryItems)
	if err != nil {
		return nil, typed(err)
	}

	create := requests.CreateInput{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  *categoryID,
		ItemID:      itemID,
		UserID:      userID,
		Quantity:    input.Quantity,
		TotalCost:   input.TotalCost,
	}
	if s := strings.TrimSpace(input.Status); s != "" {
		status, err := enums.ParseRequestStatus(s)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		create.Status = status
	}
	if p := strings.TrimSpace(input.Priority); p != "" {
		priority, err := enums.ParseRequestPriority(p)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		create.Priority = priority
	}

	out, err := f.requests.Create(ctx, create, actor)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) Update(ctx context.Context, input UpdateRequestInput, actor requests.Actor) (*requests.RequestDTO, error) {
	id, err := parseRequestID(input.ID)
	if err != nil {
		return nil, err
	}

	patch := requests.Patch{
		Title:           input.Title,
		Description:     input.Description,
		Quantity:        input.Quantity,
		TotalCost:       input.TotalCost,
		RejectionReason: input.RejectionReason,
	}
	if patch.CategoryID, err = f.ids.ResolveOptional(ctx, input.CategoryID, enums.EntityKindCategories); err != nil {
		return nil, typed(err)
	}
	if patch.ItemID, err = f.ids.ResolveOptional(ctx, input.ItemID, enums.EntityKindInventoryItems); err != nil {
		return nil, typed(err)
	}
	if input.Status != nil {
		status, err := enums.ParseRequestStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		patch.Status = &status
	}
	if input.Priority != nil {
		priority, err := enums.ParseRequestPriority(*input.Priority)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		patch.Priority = &priority
	}

	out, err := f.requests.Update(ctx, id, patch, actor)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) Delete(ctx context.Context, rawID any, actor requests.Actor) error {
	id, err := parseRequestID(rawID)
	if err != nil {
		return err
	}
	return typed(f.requests.Delete(ctx, id, actor))
}

func (f *Facade) AddComment(ctx context.Context, input CommentInput, actor requests.Actor) (*requests.CommentDTO, error) {
	id, err := parseRequestID(input.RequestID)
	if err != nil {
		return nil, err
	}
	out, err := f.requests.AddComment(ctx, id, input.Content, actor)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

// parseRequestID accepts only canonical ids. Requests were never addressed by
// legacy integers.
func parseRequestID(raw any) (uuid.UUID, error) {
	var value string
	switch v := raw.(type) {
	case string:
		value = strings.TrimSpace(v)
	case uuid.UUID:
		return v, nil
	case nil:
	default:
		value = strings.TrimSpace(fmt.Sprint(v))
	}
	if value == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("request %s not found", value))
	}
	return id, nil
}
