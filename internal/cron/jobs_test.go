package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/db/dbtest"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

type fakePurger struct {
	cutoff  time.Time
	deleted int64
	err     error
	calls   int
}

func (f *fakePurger) DeleteReadOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestNotificationRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	purger := &fakePurger{deleted: 7}
	job, err := NewNotificationRetentionJob(NotificationRetentionJobParams{
		Logger:        testLogger(),
		Notifications: purger,
		Retention:     48 * time.Hour,
		Now:           func() time.Time { return now },
	})
	require.NoError(t, err)
	assert.Equal(t, "notification-retention", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, purger.calls)
	assert.True(t, purger.cutoff.Equal(now.Add(-48*time.Hour)))
}

func TestNotificationRetentionPropagatesErrors(t *testing.T) {
	job, err := NewNotificationRetentionJob(NotificationRetentionJobParams{
		Logger:        testLogger(),
		Notifications: &fakePurger{err: errors.New("boom")},
	})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
}

func TestNotificationRetentionKeepsUnread(t *testing.T) {
	_, conn := dbtest.OpenClient(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	readAt := old
	rows := []models.Notification{
		{ID: uuid.New(), UserID: user.ID, Type: enums.NotificationTypeRequestApproved, Message: "read", IsRead: true, ReadAt: &readAt},
		{ID: uuid.New(), UserID: user.ID, Type: enums.NotificationTypeRequestApproved, Message: "unread"},
	}
	for i := range rows {
		require.NoError(t, conn.Create(&rows[i]).Error)
		require.NoError(t, conn.Model(&rows[i]).Update("created_at", old).Error)
	}

	svc, err := notifications.NewService(notifications.NewRepository(conn))
	require.NoError(t, err)
	job, err := NewNotificationRetentionJob(NotificationRetentionJobParams{
		Logger:        testLogger(),
		Notifications: svc,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	var remaining []models.Notification
	require.NoError(t, conn.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "unread", remaining[0].Message)
}

func TestPendingReminderNotifiesReviewersOnce(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	requester := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	admin := dbtest.MustCreateUser(t, conn, enums.UserRoleAdmin)
	manager := dbtest.MustCreateUser(t, conn, enums.UserRoleManager)
	category := dbtest.MustCreateCategory(t, conn, "Office")

	stale := dbtest.MustCreateRequest(t, conn, requester.ID, category.ID, nil, enums.RequestStatusPending, 1)
	require.NoError(t, conn.Model(stale).Update("created_at", time.Now().UTC().Add(-96*time.Hour)).Error)
	dbtest.MustCreateRequest(t, conn, requester.ID, category.ID, nil, enums.RequestStatusPending, 1)
	draft := dbtest.MustCreateRequest(t, conn, requester.ID, category.ID, nil, enums.RequestStatusDraft, 1)
	require.NoError(t, conn.Model(draft).Update("created_at", time.Now().UTC().Add(-96*time.Hour)).Error)

	notifRepo := notifications.NewRepository(conn)
	emitter, err := notifications.NewEmitter(notifRepo)
	require.NoError(t, err)
	job, err := NewPendingReminderJob(PendingReminderJobParams{
		Logger:        testLogger(),
		DB:            client,
		Requests:      requests.NewRepository(conn),
		Users:         users.NewRepository(conn),
		Notifications: notifRepo,
		Emitter:       emitter,
		Age:           72 * time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	var sent []models.Notification
	require.NoError(t, conn.Where("type = ?", enums.NotificationTypeRequestReminder).Find(&sent).Error)
	require.Len(t, sent, 2)
	recipients := map[string]bool{}
	for _, n := range sent {
		require.NotNil(t, n.RelatedItemID)
		assert.Equal(t, stale.ID, *n.RelatedItemID)
		recipients[n.UserID.String()] = true
	}
	assert.True(t, recipients[admin.ID.String()])
	assert.True(t, recipients[manager.ID.String()])
}

type failingPending struct{}

func (failingPending) ListPendingBefore(context.Context, time.Time) ([]models.ItemRequest, error) {
	return nil, errors.New("db down")
}

func TestPendingReminderRequiresDeps(t *testing.T) {
	_, err := NewPendingReminderJob(PendingReminderJobParams{Logger: testLogger()})
	require.Error(t, err)
}

func TestPendingReminderListError(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	notifRepo := notifications.NewRepository(conn)
	emitter, err := notifications.NewEmitter(notifRepo)
	require.NoError(t, err)
	job, err := NewPendingReminderJob(PendingReminderJobParams{
		Logger:        testLogger(),
		DB:            client,
		Requests:      failingPending{},
		Users:         users.NewRepository(conn),
		Notifications: notifRepo,
		Emitter:       emitter,
	})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
}
