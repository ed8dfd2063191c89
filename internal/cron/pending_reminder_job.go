package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

const defaultReminderAge = 72 * time.Hour

type pendingSource interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.ItemRequest, error)
}

type reviewerSource interface {
	List(ctx context.Context, filter users.ListFilter) ([]models.User, error)
}

type reminderLedger interface {
	ExistsForRequest(ctx context.Context, requestID uuid.UUID, kind enums.NotificationType, since time.Time) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type PendingReminderJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Requests      pendingSource
	Users         reviewerSource
	Notifications reminderLedger
	Emitter       notifications.Emitter
	Age           time.Duration
	Now           func() time.Time
}

// NewPendingReminderJob nudges admins and managers about requests that have
// sat in pending longer than Age. Each request is reminded at most once per Age.
func NewPendingReminderJob(params PendingReminderJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.DB == nil:
		return nil, fmt.Errorf("db runner required")
	case params.Requests == nil:
		return nil, fmt.Errorf("requests repository required")
	case params.Users == nil:
		return nil, fmt.Errorf("users repository required")
	case params.Notifications == nil:
		return nil, fmt.Errorf("notifications repository required")
	case params.Emitter == nil:
		return nil, fmt.Errorf("notification emitter required")
	}
	age := params.Age
	if age <= 0 {
		age = defaultReminderAge
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &pendingReminderJob{
		logg:     params.Logger,
		db:       params.DB,
		requests: params.Requests,
		users:    params.Users,
		ledger:   params.Notifications,
		emitter:  params.Emitter,
		age:      age,
		now:      now,
	}, nil
}

type pendingReminderJob struct {
	logg     *logger.Logger
	db       txRunner
	requests pendingSource
	users    reviewerSource
	ledger   reminderLedger
	emitter  notifications.Emitter
	age      time.Duration
	now      func() time.Time
}

func (j *pendingReminderJob) Name() string { return "pending-reminder" }

func (j *pendingReminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.age)
	stale, err := j.requests.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list pending requests: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	reviewers, err := j.reviewers(ctx)
	if err != nil {
		return err
	}
	if len(reviewers) == 0 {
		j.logg.Warn(ctx, "cron.pending_reminder_no_reviewers")
		return nil
	}

	var errs error
	reminded := 0
	for i := range stale {
		sent, err := j.remind(ctx, &stale[i], reviewers, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("request %s: %w", stale[i].ID, err))
			continue
		}
		if sent {
			reminded++
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"stale":    len(stale),
		"reminded": reminded,
	}), "cron.pending_reminder")
	return errs
}

func (j *pendingReminderJob) reviewers(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, role := range []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleManager} {
		rows, err := j.users.List(ctx, users.ListFilter{Role: &role})
		if err != nil {
			return nil, fmt.Errorf("list %s users: %w", role, err)
		}
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

func (j *pendingReminderJob) remind(ctx context.Context, request *models.ItemRequest, reviewers []uuid.UUID, since time.Time) (bool, error) {
	already, err := j.ledger.ExistsForRequest(ctx, request.ID, enums.NotificationTypeRequestReminder, since)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}
	requestID := request.ID
	message := fmt.Sprintf("Request %q has been pending since %s", request.Title, request.CreatedAt.UTC().Format("2006-01-02"))
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, reviewer := range reviewers {
			if err := j.emitter.Emit(ctx, tx, notifications.NotificationInput{
				UserID:           reviewer,
				Type:             enums.NotificationTypeRequestReminder,
				Message:          message,
				RelatedRequestID: &requestID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
