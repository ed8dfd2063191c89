package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

// NotificationInput describes one notification addressed to a user.
type NotificationInput struct {
	UserID           uuid.UUID
	Type             enums.NotificationType
	Message          string
	RelatedRequestID *uuid.UUID
}

// Emitter writes notifications on the caller's transaction so they commit or
// roll back together with the change that caused them.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, input NotificationInput) error
}

type emitter struct {
	repo Repository
}

// NewEmitter wraps a repository as an Emitter.
func NewEmitter(repo Repository) (Emitter, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &emitter{repo: repo}, nil
}

func (e *emitter) Emit(ctx context.Context, tx *gorm.DB, input NotificationInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification user id required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}

	row := &models.Notification{
		UserID:        input.UserID,
		Type:          input.Type,
		Message:       message,
		RelatedItemID: input.RelatedRequestID,
	}
	if err := e.repo.WithTx(tx).Create(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create notification")
	}
	return nil
}
