package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/pkg/db"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
	"github.com/gudangmitra/gudang-backend/pkg/metrics"
)

// Service exposes inventory CRUD and the quantity operations used by the
// request lifecycle.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, filter ListFilter) ([]ItemDTO, error)
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reserver
}

// Reserver is the narrow surface the lifecycle manager depends on. Both calls
// run on the caller's transaction.
type Reserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.LifecycleMetrics
}

// NewService constructs the inventory service. metrics may be nil.
func NewService(repo Repository, tx txRunner, logg *logger.Logger, m *metrics.LifecycleMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg, metrics: m}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]ItemDTO, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory items")
	}
	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, FromModel(&items[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryId is required")
	}
	if input.QuantityAvailable < 0 || input.QuantityReserved < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantities must not be negative")
	}
	price := decimal.Zero
	if input.UnitPrice != nil {
		price = *input.UnitPrice
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unitPrice must not be negative")
	}

	exists, err := s.repo.CategoryExists(ctx, input.CategoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	item := &models.InventoryItem{
		Name:              name,
		Description:       input.Description,
		CategoryID:        input.CategoryID,
		SKU:               input.SKU,
		QuantityAvailable: input.QuantityAvailable,
		QuantityReserved:  input.QuantityReserved,
		UnitPrice:         price,
		Location:          input.Location,
		ImageURL:          input.ImageURL,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inventory item")
	}
	return s.Get(ctx, item.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if input.isEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.SKU != nil {
		updates["sku"] = *input.SKU
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.QuantityAvailable != nil {
		if *input.QuantityAvailable < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantityAvailable must not be negative")
		}
		updates["quantity_available"] = *input.QuantityAvailable
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unitPrice must not be negative")
		}
		updates["unit_price"] = *input.UnitPrice
	}
	if input.CategoryID != nil {
		exists, err := s.repo.CategoryExists(ctx, *input.CategoryID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		updates["category_id"] = *input.CategoryID
	}

	rows, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory item")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByID(ctx, id); err != nil {
			return mapLoadError(err)
		}

		refs, err := txRepo.CountRequestReferences(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count request references")
		}
		if refs > 0 {
			return referencedError(refs)
		}

		if _, err := txRepo.Delete(ctx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return referencedError(0)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory item")
		}
		return nil
	})
}

func (s *service) Reserve(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	txRepo := s.repo.WithTx(tx)

	rows, err := txRepo.Reserve(ctx, id, qty)
	if err != nil {
		s.metrics.ObserveReservation("error")
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve inventory")
	}
	if rows > 0 {
		s.metrics.ObserveReservation("ok")
		return nil
	}

	item, err := txRepo.FindByID(ctx, id)
	if err != nil {
		s.metrics.ObserveReservation("missing")
		return mapLoadError(err)
	}
	s.metrics.ObserveReservation("insufficient")
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"itemId":    id.String(),
			"available": item.QuantityAvailable,
			"requested": qty,
		})
}

func (s *service) Release(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	txRepo := s.repo.WithTx(tx)

	item, err := txRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapLoadError(err)
	}

	amount := qty
	if item.QuantityReserved < qty {
		amount = item.QuantityReserved
		warnCtx := s.logg.WithFields(ctx, map[string]any{
			"item_id":   id.String(),
			"reserved":  item.QuantityReserved,
			"requested": qty,
		})
		s.logg.Warn(warnCtx, "inventory release clamped")
	}
	if amount == 0 {
		return nil
	}

	rows, err := txRepo.Release(ctx, id, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release inventory")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "inventory changed during release")
	}
	return nil
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
}

func referencedError(refs int64) error {
	err := pkgerrors.New(pkgerrors.CodeReferenced, "inventory item is referenced by requests")
	if refs > 0 {
		err = err.WithDetails(map[string]any{"requests": refs})
	}
	return err
}
