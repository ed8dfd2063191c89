package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudangmitra/gudang-backend/pkg/db/dbtest"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

func TestSeedAdminIsIdempotent(t *testing.T) {
	_, conn := dbtest.OpenClient(t)
	repo := NewRepository(conn)
	hasher := testHasher()
	id := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	input := SeedAdminInput{ID: id, Email: "Admin@Gudang.test", Password: "admin-password"}

	created, err := SeedAdmin(context.Background(), repo, hasher, input)
	require.NoError(t, err)
	assert.True(t, created)

	stored, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, stored.Role)
	assert.Equal(t, "admin@gudang.test", stored.Email)
	assert.Equal(t, "Administrator", stored.Name)

	created, err = SeedAdmin(context.Background(), repo, hasher, input)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSeedAdminRejectsWeakPassword(t *testing.T) {
	_, conn := dbtest.OpenClient(t)
	_, err := SeedAdmin(context.Background(), NewRepository(conn), testHasher(), SeedAdminInput{
		ID:       uuid.New(),
		Email:    "admin@gudang.test",
		Password: "x",
	})
	require.Error(t, err)
}
