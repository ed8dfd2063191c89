package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/internal/inventory"
	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
	"github.com/gudangmitra/gudang-backend/pkg/metrics"
)

const outcomeOK = "ok"

// Manager owns the request state machine. Every write runs in one transaction
// together with its inventory and notification side effects.
type Manager interface {
	Get(ctx context.Context, id uuid.UUID) (*RequestDTO, error)
	List(ctx context.Context, filter ListFilter) ([]RequestDTO, error)
	Create(ctx context.Context, input CreateInput, actor Actor) (*RequestDTO, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch, actor Actor) (*RequestDTO, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	AddComment(ctx context.Context, requestID uuid.UUID, content string, actor Actor) (*CommentDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ManagerParams bundles the manager's collaborators. Metrics and Now are
// optional.
type ManagerParams struct {
	Repo      Repository
	Tx        txRunner
	Inventory inventory.Reserver
	Emitter   notifications.Emitter
	Logger    *logger.Logger
	Metrics   *metrics.LifecycleMetrics
	Now       func() time.Time
}

type manager struct {
	repo      Repository
	tx        txRunner
	inventory inventory.Reserver
	emitter   notifications.Emitter
	logg      *logger.Logger
	metrics   *metrics.LifecycleMetrics
	now       func() time.Time
}

// NewManager builds the lifecycle manager with the required dependencies.
func NewManager(params ManagerParams) (Manager, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory reserver required")
	}
	if params.Emitter == nil {
		return nil, fmt.Errorf("notification emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &manager{
		repo:      params.Repo,
		tx:        params.Tx,
		inventory: params.Inventory,
		emitter:   params.Emitter,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

func (m *manager) Get(ctx context.Context, id uuid.UUID) (*RequestDTO, error) {
	row, err := m.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	out, err := m.attachComments(ctx, []RequestRow{*row})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (m *manager) List(ctx context.Context, filter ListFilter) ([]RequestDTO, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filter.Priority != nil && !filter.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority filter")
	}
	rows, err := m.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list requests")
	}
	return m.attachComments(ctx, rows)
}

func (m *manager) attachComments(ctx context.Context, rows []RequestRow) ([]RequestDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	comments, err := m.repo.ListComments(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list comments")
	}
	byRequest := make(map[uuid.UUID][]CommentDTO, len(rows))
	for i := range comments {
		byRequest[comments[i].RequestID] = append(byRequest[comments[i].RequestID], commentFromRow(&comments[i]))
	}

	out := make([]RequestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromRow(&rows[i], byRequest[rows[i].ID]))
	}
	return out, nil
}

func (m *manager) Create(ctx context.Context, input CreateInput, actor Actor) (*RequestDTO, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryId is required")
	}
	if input.UserID != actor.UserID && !actor.Role.CanReview() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot create requests for another user")
	}

	status := input.Status
	if status == "" {
		status = enums.RequestStatusPending
	}
	if status != enums.RequestStatusPending && status != enums.RequestStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial status must be draft or pending")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.RequestPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if input.TotalCost != nil && input.TotalCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "totalCost must not be negative")
	}

	request := &models.ItemRequest{
		Title:       title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		ItemID:      input.ItemID,
		Priority:    priority,
		Status:      status,
		UserID:      input.UserID,
		Quantity:    quantity,
	}
	if input.TotalCost != nil {
		request.TotalCost = decimal.NewNullDecimal(*input.TotalCost)
	}

	err := m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := m.repo.WithTx(tx)

		if _, err := txRepo.FindUser(ctx, input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		exists, err := txRepo.CategoryExists(ctx, input.CategoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		if input.ItemID != nil {
			item, err := m.loadItemForCategory(ctx, txRepo, *input.ItemID, input.CategoryID)
			if err != nil {
				return err
			}
			if input.TotalCost == nil {
				request.TotalCost = decimal.NewNullDecimal(item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))))
			}
		}

		if err := txRepo.Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = m.logg.WithRequestRef(ctx, request.ID.String())
	m.logg.Info(ctx, "request created")
	return m.Get(ctx, request.ID)
}

func (m *manager) loadItemForCategory(ctx context.Context, repo Repository, itemID, categoryID uuid.UUID) (*models.InventoryItem, error) {
	item, err := repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
	}
	if item.CategoryID != categoryID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item does not belong to the request category").
			WithDetails(map[string]any{"itemId": itemID.String(), "categoryId": categoryID.String()})
	}
	return item, nil
}

// Update applies field edits and at most one status transition. The write is
// conditional on the status read at the start of the transaction.
func (m *manager) Update(ctx context.Context, id uuid.UUID, patch Patch, actor Actor) (*RequestDTO, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ctx = m.logg.WithRequestRef(ctx, id.String())

	var from, to enums.RequestStatus
	err := m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := m.repo.WithTx(tx)

		current, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		from, to = current.Status, current.Status

		if current.UserID != actor.UserID && !actor.Role.CanReview() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to modify this request")
		}

		patch = patch.withoutUnchanged(current)
		updates, err := m.buildEdits(ctx, txRepo, current, patch)
		if err != nil {
			return err
		}

		var effect func() error
		if patch.Status != nil {
			if !patch.Status.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
			}
			// the current status sent alongside field edits is a plain edit
			if *patch.Status != from || len(updates) == 0 {
				to = *patch.Status
				effect, err = m.planTransition(ctx, tx, current, to, patch, actor, updates)
				if err != nil {
					return err
				}
			}
		}
		if len(updates) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
		}

		rows, err := txRepo.UpdateIfStatus(ctx, id, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update request")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request was modified concurrently").
				WithDetails(map[string]any{"from": string(from), "to": string(to)})
		}

		if effect != nil {
			return effect()
		}
		return nil
	})
	if from != to {
		m.metrics.ObserveTransition(string(from), string(to), outcomeOf(err))
	}
	if err != nil {
		return nil, err
	}

	if from != to {
		m.logg.Info(m.logg.WithFields(ctx, map[string]any{"from": string(from), "to": string(to)}), "request status changed")
	}
	return m.Get(ctx, id)
}

// buildEdits validates the non-status fields of patch against the current row.
func (m *manager) buildEdits(ctx context.Context, repo Repository, current *models.ItemRequest, patch Patch) (map[string]any, error) {
	if err := checkEdits(current.Status, patch); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		updates["title"] = title
		current.Title = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		updates["priority"] = *patch.Priority
	}
	if patch.Quantity != nil {
		if *patch.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
		}
		updates["quantity"] = *patch.Quantity
		current.Quantity = *patch.Quantity
	}
	if patch.TotalCost != nil {
		if patch.TotalCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "totalCost must not be negative")
		}
		updates["total_cost"] = decimal.NewNullDecimal(*patch.TotalCost)
	}

	categoryID := current.CategoryID
	if patch.CategoryID != nil {
		exists, err := repo.CategoryExists(ctx, *patch.CategoryID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		categoryID = *patch.CategoryID
		updates["category_id"] = categoryID
	}
	itemID := current.ItemID
	if patch.ItemID != nil {
		itemID = patch.ItemID
		updates["item_id"] = *patch.ItemID
	}
	if itemID != nil && (patch.ItemID != nil || patch.CategoryID != nil) {
		if _, err := m.loadItemForCategory(ctx, repo, *itemID, categoryID); err != nil {
			return nil, err
		}
	}
	current.ItemID = itemID
	current.CategoryID = categoryID
	return updates, nil
}

// planTransition validates current -> to, records the status columns in
// updates and returns the side effects to run after the conditional write.
func (m *manager) planTransition(ctx context.Context, tx *gorm.DB, current *models.ItemRequest, to enums.RequestStatus, patch Patch, actor Actor, updates map[string]any) (func() error, error) {
	from := current.Status
	if !CanTransition(from, to) {
		return nil, invalidTransition(from, to)
	}
	if requiresReviewer(from, to) && !actor.Role.CanReview() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins and managers can review requests")
	}

	now := m.now().UTC()
	updates["status"] = to

	var reserve bool
	switch to {
	case enums.RequestStatusApproved:
		updates["approved_at"] = now
		updates["approved_by"] = actor.UserID
		reserve = current.ItemID != nil
	case enums.RequestStatusRejected:
		reason := ""
		if patch.RejectionReason != nil {
			reason = strings.TrimSpace(*patch.RejectionReason)
		}
		if reason == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejectionReason is required")
		}
		updates["rejected_at"] = now
		updates["rejected_by"] = actor.UserID
		updates["rejection_reason"] = reason
	case enums.RequestStatusFulfilled:
		updates["fulfillment_date"] = now
	}

	return func() error {
		if reserve {
			if err := m.inventory.Reserve(ctx, tx, *current.ItemID, current.Quantity); err != nil {
				return err
			}
		}
		return m.notifyStatus(ctx, tx, current, to)
	}, nil
}

func (m *manager) notifyStatus(ctx context.Context, tx *gorm.DB, request *models.ItemRequest, status enums.RequestStatus) error {
	kind, ok := enums.NotificationTypeForStatus(status)
	if !ok {
		return nil
	}
	return m.emitter.Emit(ctx, tx, notifications.NotificationInput{
		UserID:           request.UserID,
		Type:             kind,
		Message:          statusMessage(request.Title, status),
		RelatedRequestID: &request.ID,
	})
}

// Delete removes a request. Approved requests give their reservation back in
// the same transaction; fulfilled requests cannot be deleted.
func (m *manager) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.Role.CanReview() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins and managers can delete requests")
	}

	return m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := m.repo.WithTx(tx)
		current, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		if current.Status == enums.RequestStatusFulfilled {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "fulfilled requests cannot be deleted").
				WithDetails(map[string]any{"status": string(current.Status)})
		}

		rows, err := txRepo.DeleteIfStatus(ctx, id, current.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete request")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request was modified concurrently")
		}

		if current.Status == enums.RequestStatusApproved && current.ItemID != nil {
			if err := m.inventory.Release(ctx, tx, *current.ItemID, current.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddComment appends a comment and tells the requester when someone else wrote it.
func (m *manager) AddComment(ctx context.Context, requestID uuid.UUID, content string, actor Actor) (*CommentDTO, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}

	var out CommentDTO
	err := m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := m.repo.WithTx(tx)
		request, err := txRepo.FindByID(ctx, requestID)
		if err != nil {
			return mapLoadError(err)
		}
		author, err := txRepo.FindUser(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}

		comment := &models.Comment{
			RequestID: requestID,
			UserID:    actor.UserID,
			Content:   content,
		}
		if err := txRepo.CreateComment(ctx, comment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create comment")
		}
		name := author.Name
		out = commentFromRow(&CommentRow{Comment: *comment, UserName: &name})

		if request.UserID == actor.UserID {
			return nil
		}
		return m.emitter.Emit(ctx, tx, notifications.NotificationInput{
			UserID:           request.UserID,
			Type:             enums.NotificationTypeRequestComment,
			Message:          fmt.Sprintf("%s commented on your request %q", author.Name, request.Title),
			RelatedRequestID: &request.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func requireActor(actor Actor) error {
	if actor.UserID == uuid.Nil || !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	return nil
}

func statusMessage(title string, status enums.RequestStatus) string {
	switch status {
	case enums.RequestStatusPending:
		return fmt.Sprintf("Your request %q was submitted for review", title)
	case enums.RequestStatusApproved:
		return fmt.Sprintf("Your request %q was approved", title)
	case enums.RequestStatusRejected:
		return fmt.Sprintf("Your request %q was rejected", title)
	case enums.RequestStatusFulfilled:
		return fmt.Sprintf("Your request %q was fulfilled", title)
	default:
		return fmt.Sprintf("Your request %q is now %s", title, status)
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return string(pkgerrors.CodeInternal)
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load request")
}
