package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/pkg/db/dbtest"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

func seedNotification(t *testing.T, conn *gorm.DB, userID uuid.UUID, createdAt time.Time, read bool) *models.Notification {
	t.Helper()
	row := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeRequestSubmitted,
		Message:   "submitted",
		IsRead:    read,
		CreatedAt: createdAt.UTC(),
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func TestEmitterWritesOnCallerTransaction(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	emitter, err := NewEmitter(NewRepository(conn))
	require.NoError(t, err)

	rollback := assert.AnError
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := emitter.Emit(context.Background(), tx, NotificationInput{
			UserID:  user.ID,
			Type:    enums.NotificationTypeRequestApproved,
			Message: "Your request was approved",
		}); err != nil {
			return err
		}
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	var count int64
	require.NoError(t, conn.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count, "emit must roll back with the caller")

	require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return emitter.Emit(context.Background(), tx, NotificationInput{
			UserID:  user.ID,
			Type:    enums.NotificationTypeRequestApproved,
			Message: "Your request was approved",
		})
	}))
	require.NoError(t, conn.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEmitterValidatesInput(t *testing.T) {
	conn := dbtest.Open(t)
	emitter, err := NewEmitter(NewRepository(conn))
	require.NoError(t, err)

	cases := []NotificationInput{
		{Type: enums.NotificationTypeRequestApproved, Message: "x"},
		{UserID: uuid.New(), Type: "bogus", Message: "x"},
		{UserID: uuid.New(), Type: enums.NotificationTypeRequestApproved, Message: "  "},
	}
	for _, input := range cases {
		err := emitter.Emit(context.Background(), conn, input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v got %v", input, err)
	}
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	other := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	var seeded []*models.Notification
	for i := 0; i < 3; i++ {
		seeded = append(seeded, seedNotification(t, conn, user.ID, base.Add(time.Duration(i)*time.Minute), false))
	}
	seedNotification(t, conn, other.ID, base, false)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	page, err := svc.List(context.Background(), ListParams{UserID: user.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, seeded[2].ID, page.Items[0].ID)
	assert.Equal(t, seeded[1].ID, page.Items[1].ID)
	require.NotEmpty(t, page.Cursor)

	rest, err := svc.List(context.Background(), ListParams{UserID: user.ID, Limit: 2, Cursor: page.Cursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, seeded[0].ID, rest.Items[0].ID)
	assert.Empty(t, rest.Cursor)
}

func TestRepositoryMarkReadScopedToOwner(t *testing.T) {
	conn := dbtest.Open(t)
	owner := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	stranger := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	row := seedNotification(t, conn, owner.ID, time.Now(), false)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	err = svc.MarkRead(context.Background(), stranger.ID, row.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	require.NoError(t, svc.MarkRead(context.Background(), owner.ID, row.ID))
	require.NoError(t, svc.MarkRead(context.Background(), owner.ID, row.ID))

	var stored models.Notification
	require.NoError(t, conn.First(&stored, "id = ?", row.ID).Error)
	assert.True(t, stored.IsRead)
	assert.NotNil(t, stored.ReadAt)

	unread, err := svc.List(context.Background(), ListParams{UserID: owner.ID, UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unread.Items)
}

func TestRepositoryMarkAllReadAndRetention(t *testing.T) {
	conn := dbtest.Open(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleUser)
	now := time.Now().UTC()

	seedNotification(t, conn, user.ID, now.Add(-48*time.Hour), false)
	seedNotification(t, conn, user.ID, now.Add(-47*time.Hour), false)
	fresh := seedNotification(t, conn, user.ID, now, true)
	staleUnread := seedNotification(t, conn, user.ID, now.Add(-72*time.Hour), false)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	count, err := svc.MarkAllRead(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// leave one stale row unread so retention has to skip it
	require.NoError(t, conn.Model(&models.Notification{}).Where("id = ?", staleUnread.ID).
		UpdateColumns(map[string]any{"is_read": false, "read_at": nil}).Error)

	deleted, err := svc.DeleteReadOlderThan(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining []models.Notification
	require.NoError(t, conn.Order("created_at ASC").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, staleUnread.ID, remaining[0].ID)
	assert.Equal(t, fresh.ID, remaining[1].ID)
}
