package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/pkg/db/dbtest"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	svc, err := NewService(NewRepository(conn), client)
	require.NoError(t, err)
	return svc, conn
}

func TestCreateAndList(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	desc := "pens and paper"
	created, err := svc.Create(ctx, CreateCategoryInput{Name: " Office ", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Office", created.Name)

	dbtest.MustCreateItem(t, c, created.ID, 3)
	dbtest.MustCreateItem(t, c, created.ID, 1)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ItemCount)
	assert.Equal(t, int64(2), *list[0].ItemCount)
}

func TestCreateRejectsDuplicateAndEmptyNames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCategoryInput{Name: ""})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Tools"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Tools"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestUpdate(t *testing.T) {
	svc, c := newTestService(t)
	category := dbtest.MustCreateCategory(t, c, "Tools")

	name := "Hand Tools"
	updated, err := svc.Update(context.Background(), category.ID, UpdateCategoryInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = svc.Update(context.Background(), uuid.New(), UpdateCategoryInput{Name: &name})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Update(context.Background(), category.ID, UpdateCategoryInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteBlockedWhileInventoryReferencesCategory(t *testing.T) {
	svc, c := newTestService(t)
	category := dbtest.MustCreateCategory(t, c, "Tools")
	dbtest.MustCreateItem(t, c, category.ID, 5)

	err := svc.Delete(context.Background(), category.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeReferenced), "got %v", err)

	_, err = svc.Get(context.Background(), category.ID)
	require.NoError(t, err)
}

func TestDeleteBlockedWhileRequestsReferenceCategory(t *testing.T) {
	svc, c := newTestService(t)
	category := dbtest.MustCreateCategory(t, c, "Tools")
	user := dbtest.MustCreateUser(t, c, enums.UserRoleUser)
	dbtest.MustCreateRequest(t, c, user.ID, category.ID, nil, enums.RequestStatusDraft, 1)

	err := svc.Delete(context.Background(), category.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeReferenced), "got %v", err)
}

func TestDeleteUnreferencedCategory(t *testing.T) {
	svc, c := newTestService(t)
	category := dbtest.MustCreateCategory(t, c, "Tools")

	require.NoError(t, svc.Delete(context.Background(), category.ID))
	_, err := svc.Get(context.Background(), category.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	assert.True(t, pkgerrors.IsCode(svc.Delete(context.Background(), category.ID), pkgerrors.CodeNotFound))
}
