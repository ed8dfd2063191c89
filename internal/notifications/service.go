package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/pagination"
)

// Service is the caller-facing side of notifications: paging an inbox and
// marking entries read. Rows are written by the Emitter.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// NotificationDTO is the transport shape of a notification.
type NotificationDTO struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"userId"`
	Type          string     `json:"type"`
	Message       string     `json:"message"`
	IsRead        bool       `json:"isRead"`
	ReadAt        *time.Time `json:"readAt,omitempty"`
	RelatedItemID *uuid.UUID `json:"relatedItemId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ListResult carries one page. Cursor is empty on the last page.
type ListResult struct {
	Items  []NotificationDTO `json:"items"`
	Cursor string            `json:"cursor"`
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func errUserRequired() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, errUserRequired()
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, listNotificationsParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		Cursor:     cursor,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}

	out := &ListResult{Items: make([]NotificationDTO, len(rows))}
	for i := range rows {
		out.Items[i] = fromModel(&rows[i])
	}
	if next != nil {
		out.Cursor = pagination.EncodeCursor(*next)
	}
	return out, nil
}

// MarkRead flags one of the caller's notifications. Someone else's
// notification reads as not found.
func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	switch {
	case userID == uuid.Nil:
		return errUserRequired()
	case notificationID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	switch {
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	case !result.Found:
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, errUserRequired()
	}
	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notifications read")
	}
	return count, nil
}

// DeleteReadOlderThan purges read notifications created before cutoff.
func (s *service) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "cutoff required")
	}
	count, err := s.repo.DeleteReadBefore(ctx, cutoff.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete read notifications")
	}
	return count, nil
}

func fromModel(m *models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:            m.ID,
		UserID:        m.UserID,
		Type:          string(m.Type),
		Message:       m.Message,
		IsRead:        m.IsRead,
		ReadAt:        m.ReadAt,
		RelatedItemID: m.RelatedItemID,
		CreatedAt:     m.CreatedAt,
	}
}
