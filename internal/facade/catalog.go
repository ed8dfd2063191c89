package facade

import (
	"context"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/internal/categories"
	"github.com/gudangmitra/gudang-backend/internal/inventory"
	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

// InventoryQuery filters inventory listings.
type InventoryQuery struct {
	CategoryID any
	Search     string
}

// CreateItemInput wraps the inventory payload with a raw category id.
type CreateItemInput struct {
	CategoryID any
	Item       inventory.CreateItemInput
}

// UpdateItemInput wraps the inventory patch with an optional raw category id.
type UpdateItemInput struct {
	CategoryID any
	Item       inventory.UpdateItemInput
}

func (f *Facade) ListInventory(ctx context.Context, query InventoryQuery) ([]inventory.ItemDTO, error) {
	categoryID, err := f.ids.ResolveOptional(ctx, query.CategoryID, enums.EntityKindCategories)
	if err != nil {
		return nil, typed(err)
	}
	out, err := f.inventory.List(ctx, inventory.ListFilter{CategoryID: categoryID, Search: query.Search})
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) GetInventoryItem(ctx context.Context, rawID any) (*inventory.ItemDTO, error) {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindInventoryItems)
	if err != nil {
		return nil, typed(err)
	}
	out, err := f.inventory.Get(ctx, id)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) CreateInventoryItem(ctx context.Context, input CreateItemInput) (*inventory.ItemDTO, error) {
	categoryID, err := f.ids.ResolveOptional(ctx, input.CategoryID, enums.EntityKindCategories)
	if err != nil {
		return nil, typed(err)
	}
	if categoryID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryId is required")
	}
	item := input.Item
	item.CategoryID = *categoryID
	out, err := f.inventory.Create(ctx, item)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) UpdateInventoryItem(ctx context.Context, rawID any, input UpdateItemInput) (*inventory.ItemDTO, error) {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindInventoryItems)
	if err != nil {
		return nil, typed(err)
	}
	item := input.Item
	if item.CategoryID, err = f.ids.ResolveOptional(ctx, input.CategoryID, enums.EntityKindCategories); err != nil {
		return nil, typed(err)
	}
	out, err := f.inventory.Update(ctx, id, item)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) DeleteInventoryItem(ctx context.Context, rawID any) error {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindInventoryItems)
	if err != nil {
		return typed(err)
	}
	return typed(f.inventory.Delete(ctx, id))
}

func (f *Facade) ListCategories(ctx context.Context) ([]categories.CategoryDTO, error) {
	out, err := f.categories.List(ctx)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) GetCategory(ctx context.Context, rawID any) (*categories.CategoryDTO, error) {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindCategories)
	if err != nil {
		return nil, typed(err)
	}
	out, err := f.categories.Get(ctx, id)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) CreateCategory(ctx context.Context, input categories.CreateCategoryInput) (*categories.CategoryDTO, error) {
	out, err := f.categories.Create(ctx, input)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) UpdateCategory(ctx context.Context, rawID any, input categories.UpdateCategoryInput) (*categories.CategoryDTO, error) {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindCategories)
	if err != nil {
		return nil, typed(err)
	}
	out, err := f.categories.Update(ctx, id, input)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) DeleteCategory(ctx context.Context, rawID any) error {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindCategories)
	if err != nil {
		return typed(err)
	}
	return typed(f.categories.Delete(ctx, id))
}

func (f *Facade) ListUsers(ctx context.Context, filter users.ListFilter) ([]users.UserDTO, error) {
	out, err := f.users.List(ctx, filter)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) GetUser(ctx context.Context, rawID any) (*users.UserDTO, error) {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindUsers)
	if err != nil {
		return nil, typed(err)
	}
	out, err := f.users.Get(ctx, id)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

// CreateUser provisions an account. Only admins may create anything above a
// plain user.
func (f *Facade) CreateUser(ctx context.Context, input users.CreateUserInput, actor requests.Actor) (*users.CreateUserResult, error) {
	if input.Role != "" && input.Role != enums.UserRoleUser && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can grant elevated roles")
	}
	out, err := f.users.Create(ctx, input)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

// UpdateUser lets a user edit their own profile. Editing others needs a
// reviewer, and only admins may change roles.
func (f *Facade) UpdateUser(ctx context.Context, rawID any, input users.UpdateUserInput, actor requests.Actor) (*users.UserDTO, error) {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindUsers)
	if err != nil {
		return nil, typed(err)
	}
	if id != actor.UserID && !actor.Role.CanReview() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot modify another user")
	}
	if input.Role != nil && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can change roles")
	}
	out, err := f.users.Update(ctx, id, input)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

// DeleteUser removes an account. Admin accounts can only be removed by admins.
func (f *Facade) DeleteUser(ctx context.Context, rawID any, actor requests.Actor) error {
	id, err := f.ids.ResolveAny(ctx, rawID, enums.EntityKindUsers)
	if err != nil {
		return typed(err)
	}
	if actor.Role != enums.UserRoleAdmin {
		target, err := f.users.Get(ctx, id)
		if err != nil {
			return typed(err)
		}
		if target.Role == enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete admins")
		}
	}
	return typed(f.users.Delete(ctx, id))
}

func (f *Facade) ListNotifications(ctx context.Context, actor requests.Actor, params notifications.ListParams) (*notifications.ListResult, error) {
	params.UserID = actor.UserID
	out, err := f.notifications.List(ctx, params)
	if err != nil {
		return nil, typed(err)
	}
	return out, nil
}

func (f *Facade) MarkNotificationRead(ctx context.Context, actor requests.Actor, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification id")
	}
	return typed(f.notifications.MarkRead(ctx, actor.UserID, id))
}

func (f *Facade) MarkAllNotificationsRead(ctx context.Context, actor requests.Actor) (int64, error) {
	count, err := f.notifications.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, typed(err)
	}
	return count, nil
}
