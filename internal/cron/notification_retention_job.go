package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

const defaultNotificationRetention = 30 * 24 * time.Hour

type notificationPurger interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationRetentionJobParams struct {
	Logger        *logger.Logger
	Notifications notificationPurger
	Retention     time.Duration
	Now           func() time.Time
}

// NewNotificationRetentionJob purges read notifications older than the
// retention window. Unread notifications are never removed.
func NewNotificationRetentionJob(params NotificationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultNotificationRetention
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &notificationRetentionJob{
		logg:      params.Logger,
		purger:    params.Notifications,
		retention: retention,
		now:       now,
	}, nil
}

type notificationRetentionJob struct {
	logg      *logger.Logger
	purger    notificationPurger
	retention time.Duration
	now       func() time.Time
}

func (j *notificationRetentionJob) Name() string { return "notification-retention" }

func (j *notificationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.purger.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge notifications: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "cron.notification_retention")
	return nil
}
