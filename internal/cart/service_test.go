package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradesphere/tradesphere-backend/internal/products"
	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  title TEXT NOT NULL,
  tags TEXT,
  price_cents INTEGER NOT NULL DEFAULT 0,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL UNIQUE,
  total_items INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		for _, table := range []string{"cart_items", "cart_records", "products"} {
			db.Exec("DELETE FROM " + table)
		}
	})

	return db
}

func TestRecalculateTotals(t *testing.T) {
	db := setupCartTestDB(t)
	svc := NewService(NewRepository(db), products.NewRepository(db))
	ctx := context.Background()

	customerID := uuid.New()

	active := &models.Product{ID: uuid.New(), VendorID: uuid.New(), SKU: "sku-1", Title: "Apples", PriceCents: 300, StockQuantity: 10, IsActive: true}
	retired := &models.Product{ID: uuid.New(), VendorID: uuid.New(), SKU: "sku-2", Title: "Retired", PriceCents: 900, StockQuantity: 10, IsActive: false}
	require.NoError(t, db.Create(active).Error)
	require.NoError(t, db.Create(retired).Error)

	record := &models.CartRecord{ID: uuid.New(), CustomerID: customerID}
	require.NoError(t, db.Create(record).Error)

	deletedProductID := uuid.New()
	for productID, qty := range map[uuid.UUID]int{active.ID: 2, retired.ID: 1, deletedProductID: 3} {
		item := &models.CartItem{ID: uuid.New(), CartID: record.ID, ProductID: productID, Quantity: qty}
		require.NoError(t, db.Create(item).Error)
	}

	updated, err := svc.RecalculateTotals(ctx, customerID)
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, 6, updated.TotalItems, "all items counted, even unavailable ones")
	assert.Equal(t, 600, updated.TotalCents, "only active products contribute to the total")

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", record.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(3), itemCount, "unavailable items stay in the cart")
}

func TestRecalculateTotals_noCart(t *testing.T) {
	db := setupCartTestDB(t)
	svc := NewService(NewRepository(db), products.NewRepository(db))

	record, err := svc.RecalculateTotals(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, record)
}
