package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tradesphere/tradesphere-backend/internal/cart"
	"github.com/tradesphere/tradesphere-backend/internal/products"
	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/pagination"
)

func paginationParams(limit int, cursor string) pagination.Params {
	return pagination.Params{Limit: limit, Cursor: cursor}
}

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newOrderService(db *gorm.DB) *Service {
	return NewService(
		NewRepository(db),
		products.NewRepository(db),
		cart.NewRepository(db),
		&testTxRunner{db: db},
		nil,
		quietLogger(),
	)
}

func seedProduct(t *testing.T, db *gorm.DB, vendorID uuid.UUID, title string, priceCents, stock int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		VendorID:      vendorID,
		SKU:           uuid.NewString()[:8],
		Title:         title,
		PriceCents:    priceCents,
		StockQuantity: stock,
		IsActive:      active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCart(t *testing.T, db *gorm.DB, customerID uuid.UUID, items map[uuid.UUID]int) *models.CartRecord {
	t.Helper()

	record := &models.CartRecord{ID: uuid.New(), CustomerID: customerID}
	require.NoError(t, db.Create(record).Error)

	for productID, qty := range items {
		item := &models.CartItem{
			ID:        uuid.New(),
			CartID:    record.ID,
			ProductID: productID,
			Quantity:  qty,
		}
		require.NoError(t, db.Create(item).Error)
	}
	return record
}

func placeInput(customerID uuid.UUID, method enums.PaymentMethod, reference *string) PlaceOrderInput {
	return PlaceOrderInput{
		ShippingAddress:  "1 Market Street, Springfield",
		Phone:            "+15550100",
		PaymentMethod:    method,
		PaymentReference: reference,
		ActorUserID:      customerID,
		ActorRole:        enums.RoleCustomer,
	}
}

func TestPlaceOrder_splitsCartByVendor(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	customerID := newUser(t, db, enums.RoleCustomer).ID
	vendorA := newUser(t, db, enums.RoleVendor).ID
	vendorB := newUser(t, db, enums.RoleVendor).ID

	apples := seedProduct(t, db, vendorA, "Apples", 300, 10, true)
	bread := seedProduct(t, db, vendorA, "Bread", 500, 5, true)
	soap := seedProduct(t, db, vendorB, "Soap", 200, 8, true)

	record := seedCart(t, db, customerID, map[uuid.UUID]int{
		apples.ID: 2,
		bread.ID:  1,
		soap.ID:   4,
	})

	created, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodCashOnDelivery, nil))
	require.NoError(t, err)
	require.Len(t, created, 2, "one order per vendor")

	totals := map[uuid.UUID]int{}
	for _, order := range created {
		totals[order.VendorID] = order.TotalCents
		assert.Equal(t, enums.OrderStatusPending, order.Status)
		assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
		assert.Regexp(t, `^TS-\d{8}-[0-9a-f]{6}$`, order.OrderNumber)
		for _, item := range order.Items {
			assert.Equal(t, order.VendorID, vendorForProduct(t, db, item.ProductID), "no cross-vendor line items")
		}
	}
	assert.Equal(t, 2*300+500, totals[vendorA])
	assert.Equal(t, 4*200, totals[vendorB])

	var stocked models.Product
	require.NoError(t, db.First(&stocked, "id = ?", apples.ID).Error)
	assert.Equal(t, 8, stocked.StockQuantity)

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", record.ID).Count(&remaining).Error)
	assert.Zero(t, remaining, "cart cleared after placement")
}

func vendorForProduct(t *testing.T, db *gorm.DB, productID uuid.UUID) uuid.UUID {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", productID).Error)
	return product.VendorID
}

func TestPlaceOrder_insufficientStockFailsWholeCheckout(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	customerID := uuid.New()
	plenty := seedProduct(t, db, uuid.New(), "Plenty", 100, 50, true)
	scarce := seedProduct(t, db, uuid.New(), "Scarce", 100, 1, true)

	seedCart(t, db, customerID, map[uuid.UUID]int{
		plenty.ID: 2,
		scarce.ID: 3,
	})

	_, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodCashOnDelivery, nil))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "no partial placement")

	var untouched models.Product
	require.NoError(t, db.First(&untouched, "id = ?", plenty.ID).Error)
	assert.Equal(t, 50, untouched.StockQuantity, "no partial stock decrement")
}

func TestPlaceOrder_unavailableProduct(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	customerID := uuid.New()
	inactive := seedProduct(t, db, uuid.New(), "Retired", 100, 10, false)
	seedCart(t, db, customerID, map[uuid.UUID]int{inactive.ID: 1})

	_, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodCashOnDelivery, nil))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestPlaceOrder_emptyCart(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	customerID := uuid.New()
	seedCart(t, db, customerID, nil)

	_, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodCashOnDelivery, nil))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestPlaceOrder_paymentSeeding(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	reference := "FLW-789"

	t.Run("card with reference starts paid", func(t *testing.T) {
		customerID := uuid.New()
		product := seedProduct(t, db, uuid.New(), "Widget", 100, 10, true)
		seedCart(t, db, customerID, map[uuid.UUID]int{product.ID: 1})

		created, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodCard, &reference))
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, enums.PaymentStatusPaid, created[0].PaymentStatus)
		require.NotNil(t, created[0].PaymentReference)
		assert.Equal(t, reference, *created[0].PaymentReference)
	})

	t.Run("card without reference starts pending", func(t *testing.T) {
		customerID := uuid.New()
		product := seedProduct(t, db, uuid.New(), "Widget", 100, 10, true)
		seedCart(t, db, customerID, map[uuid.UUID]int{product.ID: 1})

		created, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodCard, nil))
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, enums.PaymentStatusPending, created[0].PaymentStatus, "awaits gateway verification")
		assert.Nil(t, created[0].PaymentReference)
	})

	t.Run("bank transfer starts pending", func(t *testing.T) {
		customerID := uuid.New()
		product := seedProduct(t, db, uuid.New(), "Widget", 100, 10, true)
		seedCart(t, db, customerID, map[uuid.UUID]int{product.ID: 1})

		created, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodBankTransfer, &reference))
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, enums.PaymentStatusPending, created[0].PaymentStatus)
	})
}

func TestPlaceOrder_freezesPricesAtPlacement(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	customerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), "Gadget", 1500, 10, true)
	seedCart(t, db, customerID, map[uuid.UUID]int{product.ID: 2})

	created, err := svc.PlaceOrder(ctx, placeInput(customerID, enums.PaymentMethodCashOnDelivery, nil))
	require.NoError(t, err)
	require.Len(t, created, 1)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).UpdateColumn("price_cents", 9999).Error)

	reloaded, err := svc.GetOrder(ctx, GetOrderInput{
		OrderID:     created[0].ID,
		ActorUserID: customerID,
		ActorRole:   enums.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, 3000, reloaded.TotalCents)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 1500, reloaded.Items[0].UnitPriceCents)
}

func TestPlaceOrder_customersOnly(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)

	input := placeInput(uuid.New(), enums.PaymentMethodCashOnDelivery, nil)
	input.ActorRole = enums.RoleVendor

	_, err := svc.PlaceOrder(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())
}

func TestGetOrder_foreignOrderIsForbiddenNotMissing(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	owner := uuid.New()
	order := seedOrder(t, db, owner, uuid.New(), time.Now().UTC(), 1000, enums.PaymentStatusPending, enums.OrderStatusPending, nil)

	_, err := svc.GetOrder(ctx, GetOrderInput{
		OrderID:     order.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.RoleCustomer,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())

	_, err = svc.GetOrder(ctx, GetOrderInput{
		OrderID:     uuid.New(),
		ActorUserID: owner,
		ActorRole:   enums.RoleCustomer,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestUpdateStatus_vendorOwnershipAndTimestamps(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	vendorID := uuid.New()
	order := seedOrder(t, db, uuid.New(), vendorID, time.Now().UTC(), 1000, enums.PaymentStatusPaid, enums.OrderStatusPending, nil)

	_, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:     order.ID,
		NextStatus:  enums.OrderStatusShipped,
		ActorUserID: uuid.New(),
		ActorRole:   enums.RoleVendor,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())

	tracking := "TRACK-001"
	updated, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:        order.ID,
		NextStatus:     enums.OrderStatusShipped,
		TrackingNumber: &tracking,
		ActorUserID:    vendorID,
		ActorRole:      enums.RoleVendor,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, tracking, *updated.TrackingNumber)

	corrected := "TRACK-002"
	resubmitted, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:        order.ID,
		NextStatus:     enums.OrderStatusShipped,
		TrackingNumber: &corrected,
		ActorUserID:    vendorID,
		ActorRole:      enums.RoleVendor,
	})
	require.NoError(t, err, "re-submitting the current status is not a conflict")
	require.NotNil(t, resubmitted.TrackingNumber)
	assert.Equal(t, corrected, *resubmitted.TrackingNumber)

	var persisted models.Order
	require.NoError(t, db.First(&persisted, "id = ?", order.ID).Error)
	require.NotNil(t, persisted.TrackingNumber)
	assert.Equal(t, corrected, *persisted.TrackingNumber, "corrected tracking number is stored")

	delivered, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:     order.ID,
		NextStatus:  enums.OrderStatusDelivered,
		ActorUserID: vendorID,
		ActorRole:   enums.RoleVendor,
	})
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)

	cancelled, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:     order.ID,
		NextStatus:  enums.OrderStatusCancelled,
		ActorUserID: vendorID,
		ActorRole:   enums.RoleVendor,
	})
	require.NoError(t, err, "default table allows reopening any status")
	require.NotNil(t, cancelled.CanceledAt)
}

func TestUpdateStatus_strictTableBlocksBackwardMoves(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := NewService(
		NewRepository(db),
		products.NewRepository(db),
		cart.NewRepository(db),
		&testTxRunner{db: db},
		StrictTransitions(),
		quietLogger(),
	)
	ctx := context.Background()

	vendorID := uuid.New()
	order := seedOrder(t, db, uuid.New(), vendorID, time.Now().UTC(), 1000, enums.PaymentStatusPaid, enums.OrderStatusDelivered, nil)

	_, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:     order.ID,
		NextStatus:  enums.OrderStatusPending,
		ActorUserID: vendorID,
		ActorRole:   enums.RoleVendor,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
}

func TestDashboard_countsEveryFulfillmentStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	vendorID := uuid.New()
	customerID := uuid.New()
	base := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	seedOrder(t, db, customerID, vendorID, base, 1000, enums.PaymentStatusPending, enums.OrderStatusPending, nil)
	seedOrder(t, db, customerID, vendorID, base, 2000, enums.PaymentStatusPaid, enums.OrderStatusProcessing, nil)
	seedOrder(t, db, customerID, vendorID, base, 3000, enums.PaymentStatusPaid, enums.OrderStatusShipped, nil)
	seedOrder(t, db, customerID, vendorID, base, 4000, enums.PaymentStatusApproved, enums.OrderStatusDelivered, nil)
	seedOrder(t, db, customerID, vendorID, base, 5000, enums.PaymentStatusPending, enums.OrderStatusCancelled, nil)
	seedOrder(t, db, customerID, uuid.New(), base, 9000, enums.PaymentStatusApproved, enums.OrderStatusDelivered, nil)

	summary, err := svc.Dashboard(ctx, vendorID, enums.RoleVendor)
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalOrders)
	assert.Equal(t, int64(1), summary.PendingOrders)
	assert.Equal(t, int64(1), summary.ProcessingOrders)
	assert.Equal(t, int64(1), summary.ShippedOrders)
	assert.Equal(t, int64(1), summary.DeliveredOrders)
	assert.Equal(t, int64(1), summary.CancelledOrders)
	assert.Equal(t, int64(2), summary.AwaitingPaymentApproval)
	assert.Equal(t, int64(9000), summary.RevenueCents, "paid and approved orders only")

	_, err = svc.Dashboard(ctx, vendorID, enums.RoleCustomer)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())
}

func TestListCustomerOrders_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	customerID := uuid.New()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seedOrder(t, db, customerID, uuid.New(), base.Add(time.Duration(i)*time.Minute), 1000, enums.PaymentStatusPending, enums.OrderStatusPending, nil)
	}

	page, err := svc.ListCustomerOrders(ctx, ListCustomerOrdersInput{
		Pagination:  paginationParams(5, ""),
		ActorUserID: customerID,
		ActorRole:   enums.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 5)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListCustomerOrders(ctx, ListCustomerOrdersInput{
		Pagination:  paginationParams(5, page.NextCursor),
		ActorUserID: customerID,
		ActorRole:   enums.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Len(t, rest.Orders, 2)
	assert.Empty(t, rest.NextCursor)
}
