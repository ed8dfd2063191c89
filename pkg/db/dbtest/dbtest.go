// Package dbtest opens throwaway SQLite databases with the application schema
// applied, for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gudangmitra/gudang-backend/pkg/db"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	"github.com/gudangmitra/gudang-backend/pkg/migrate"
)

// Open returns a fresh in-memory database with foreign keys enforced.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:gudang_%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := migrate.UpEmbedded(context.Background(), sqlDB, true); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

// OpenClient wraps Open in a db.Client.
func OpenClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.FromConn(conn), conn
}

func MustCreateUser(t *testing.T, tx *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:           id,
		Name:         "User " + id.String()[:8],
		Email:        fmt.Sprintf("gm_test_%s@example.com", id.String()),
		PasswordHash: "hash",
		Role:         role,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func MustCreateCategory(t *testing.T, tx *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: name}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func MustCreateItem(t *testing.T, tx *gorm.DB, categoryID uuid.UUID, available int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ID:                uuid.New(),
		Name:              "Item " + uuid.NewString()[:8],
		CategoryID:        categoryID,
		QuantityAvailable: available,
		UnitPrice:         decimal.RequireFromString("2.50"),
	}
	if err := tx.Create(item).Error; err != nil {
		t.Fatalf("create inventory item: %v", err)
	}
	return item
}

func MustCreateRequest(t *testing.T, tx *gorm.DB, userID, categoryID uuid.UUID, itemID *uuid.UUID, status enums.RequestStatus, quantity int) *models.ItemRequest {
	t.Helper()
	req := &models.ItemRequest{
		ID:         uuid.New(),
		Title:      "Request " + uuid.NewString()[:8],
		CategoryID: categoryID,
		ItemID:     itemID,
		Priority:   enums.RequestPriorityMedium,
		Status:     status,
		UserID:     userID,
		Quantity:   quantity,
	}
	if err := tx.Create(req).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}
