package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gudangmitra/gudang-backend/api/responses"
	"github.com/gudangmitra/gudang-backend/api/validators"
	"github.com/gudangmitra/gudang-backend/internal/categories"
	"github.com/gudangmitra/gudang-backend/internal/facade"
	"github.com/gudangmitra/gudang-backend/internal/inventory"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

// InventoryFacade is the inventory surface of the query facade.
type InventoryFacade interface {
	ListInventory(ctx context.Context, query facade.InventoryQuery) ([]inventory.ItemDTO, error)
	GetInventoryItem(ctx context.Context, rawID any) (*inventory.ItemDTO, error)
	CreateInventoryItem(ctx context.Context, input facade.CreateItemInput) (*inventory.ItemDTO, error)
	UpdateInventoryItem(ctx context.Context, rawID any, input facade.UpdateItemInput) (*inventory.ItemDTO, error)
	DeleteInventoryItem(ctx context.Context, rawID any) error
}

// CategoriesFacade is the category surface of the query facade.
type CategoriesFacade interface {
	ListCategories(ctx context.Context) ([]categories.CategoryDTO, error)
	GetCategory(ctx context.Context, rawID any) (*categories.CategoryDTO, error)
	CreateCategory(ctx context.Context, input categories.CreateCategoryInput) (*categories.CategoryDTO, error)
	UpdateCategory(ctx context.Context, rawID any, input categories.UpdateCategoryInput) (*categories.CategoryDTO, error)
	DeleteCategory(ctx context.Context, rawID any) error
}

type createItemPayload struct {
	Name              string           `json:"name" validate:"required"`
	Description       *string          `json:"description"`
	CategoryID        any              `json:"categoryId"`
	SKU               *string          `json:"sku"`
	QuantityAvailable int              `json:"quantityAvailable" validate:"min=0"`
	QuantityReserved  int              `json:"quantityReserved" validate:"min=0"`
	UnitPrice         *decimal.Decimal `json:"unitPrice"`
	Location          *string          `json:"location"`
	ImageURL          *string          `json:"imageUrl"`
}

type updateItemPayload struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	CategoryID        any              `json:"categoryId"`
	SKU               *string          `json:"sku"`
	QuantityAvailable *int             `json:"quantityAvailable" validate:"omitempty,min=0"`
	UnitPrice         *decimal.Decimal `json:"unitPrice"`
	Location          *string          `json:"location"`
	ImageURL          *string          `json:"imageUrl"`
}

func ListInventory(svc InventoryFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListInventory(r.Context(), facade.InventoryQuery{
			CategoryID: validators.QueryID(r, "categoryId"),
			Search:     validators.QueryString(r, "search"),
		})
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func GetInventoryItem(svc InventoryFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetInventoryItem(r.Context(), pathID(r))
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func CreateInventoryItem(svc InventoryFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createItemPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.CreateInventoryItem(r.Context(), facade.CreateItemInput{
			CategoryID: body.CategoryID,
			Item: inventory.CreateItemInput{
				Name:              body.Name,
				Description:       body.Description,
				SKU:               body.SKU,
				QuantityAvailable: body.QuantityAvailable,
				QuantityReserved:  body.QuantityReserved,
				UnitPrice:         body.UnitPrice,
				Location:          body.Location,
				ImageURL:          body.ImageURL,
			},
		})
		writeResult(r.Context(), logg, w, http.StatusCreated, out, err)
	}
}

func UpdateInventoryItem(svc InventoryFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateItemPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.UpdateInventoryItem(r.Context(), pathID(r), facade.UpdateItemInput{
			CategoryID: body.CategoryID,
			Item: inventory.UpdateItemInput{
				Name:              body.Name,
				Description:       body.Description,
				SKU:               body.SKU,
				QuantityAvailable: body.QuantityAvailable,
				UnitPrice:         body.UnitPrice,
				Location:          body.Location,
				ImageURL:          body.ImageURL,
			},
		})
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func DeleteInventoryItem(svc InventoryFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteInventoryItem(r.Context(), pathID(r))
		writeResult(r.Context(), logg, w, http.StatusOK, map[string]bool{"deleted": true}, err)
	}
}

type categoryPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func ListCategories(svc CategoriesFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListCategories(r.Context())
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func GetCategory(svc CategoriesFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetCategory(r.Context(), pathID(r))
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func CreateCategory(svc CategoriesFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body categoryPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.CreateCategory(r.Context(), categories.CreateCategoryInput{
			Name:        deref(body.Name),
			Description: body.Description,
		})
		writeResult(r.Context(), logg, w, http.StatusCreated, out, err)
	}
}

func UpdateCategory(svc CategoriesFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body categoryPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.UpdateCategory(r.Context(), pathID(r), categories.UpdateCategoryInput{
			Name:        body.Name,
			Description: body.Description,
		})
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func DeleteCategory(svc CategoriesFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteCategory(r.Context(), pathID(r))
		writeResult(r.Context(), logg, w, http.StatusOK, map[string]bool{"deleted": true}, err)
	}
}
