package usecase

import (
	"context"
	"testing"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	repoimpl "mediconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestProducts(t *testing.T) (ProductUsecase, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	return NewProductUsecase(db, log, repoimpl.NewProductRepository(db), newAuditService(log)), db
}

func auditCount(t *testing.T, db *gorm.DB, action string, userID uuid.UUID) int64 {
	t.Helper()
	return countRows(t, db.Where("action = ? AND user_id = ?", action, userID), &entity.AuditLog{})
}

func TestProduct_CRUDWritesAuditTrail(t *testing.T) {
	products, db := newTestProducts(t)
	ctx := context.Background()
	admin := uuid.New()

	created, err := products.Create(ctx, admin, &dto.CreateProductRequest{
		Name:     "Blood pressure monitor",
		Category: "devices",
		Price:    decimal.RequireFromString("49.90"),
		Stock:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), auditCount(t, db, entity.AuditActionProductCreate, admin))

	updated, err := products.Update(ctx, admin, created.ID, &dto.UpdateProductRequest{
		Name:     "Blood pressure monitor",
		Category: "devices",
		Price:    decimal.RequireFromString("44.90"),
		Stock:    10,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("44.90")))
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, int64(1), auditCount(t, db, entity.AuditActionProductUpdate, admin))

	got, err := products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	require.NoError(t, products.Delete(ctx, admin, created.ID))
	assert.Equal(t, int64(1), auditCount(t, db, entity.AuditActionProductDelete, admin))

	_, err = products.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProduct_RejectsNonPositivePrice(t *testing.T) {
	products, db := newTestProducts(t)
	ctx := context.Background()
	admin := uuid.New()

	_, err := products.Create(ctx, admin, &dto.CreateProductRequest{Name: "Gloves", Price: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Zero(t, countRows(t, db, &entity.Product{}))
	assert.Zero(t, countRows(t, db, &entity.AuditLog{}))
}

func TestProduct_UnknownProduct(t *testing.T) {
	products, db := newTestProducts(t)
	ctx := context.Background()
	admin := uuid.New()

	_, err := products.Update(ctx, admin, uuid.New(), &dto.UpdateProductRequest{Name: "Gloves", Price: decimal.NewFromInt(3)})
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, products.Delete(ctx, admin, uuid.New()), ErrProductNotFound)
	assert.Zero(t, countRows(t, db, &entity.AuditLog{}))
}

func TestProduct_GetAllFiltersAndPaginates(t *testing.T) {
	products, _ := newTestProducts(t)
	ctx := context.Background()
	admin := uuid.New()

	for _, p := range []struct{ name, category string }{
		{"Gauze", "first-aid"},
		{"Bandage", "first-aid"},
		{"Thermometer", "devices"},
	} {
		_, err := products.Create(ctx, admin, &dto.CreateProductRequest{Name: p.name, Category: p.category, Price: decimal.NewFromInt(5)})
		require.NoError(t, err)
	}

	firstAid, total, err := products.GetAll(ctx, "first-aid", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, firstAid, 1)

	all, total, err := products.GetAll(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}
