package payments

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradesphere/tradesphere-backend/internal/orders"
	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/gateway"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
)

type stubVerifier struct {
	result *gateway.VerificationResult
	err    error
	calls  []string
}

func (s *stubVerifier) VerifyTransaction(_ context.Context, reference string) (*gateway.VerificationResult, error) {
	s.calls = append(s.calls, reference)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  phone TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_reference TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  tracking_number TEXT,
  total_cents INTEGER NOT NULL DEFAULT 0,
  delivered_at DATETIME,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL DEFAULT 0,
  qty INTEGER NOT NULL DEFAULT 1,
  total_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(lineItems).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM order_line_items")
		db.Exec("DELETE FROM orders")
	})

	return db
}

func seedPaymentOrder(t *testing.T, db *gorm.DB, customerID, vendorID uuid.UUID, method enums.PaymentMethod, paymentStatus enums.PaymentStatus, reference *string) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:               uuid.New(),
		OrderNumber:      "TS-20260301-abcdef",
		CustomerID:       customerID,
		VendorID:         vendorID,
		ShippingAddress:  "1 Market Street, Springfield",
		Phone:            "+15550100",
		PaymentMethod:    method,
		PaymentStatus:    paymentStatus,
		PaymentReference: reference,
		Status:           enums.OrderStatusPending,
		TotalCents:       1000,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newPaymentService(db *gorm.DB, verifier Verifier) *Service {
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(orders.NewRepository(db), verifier, log)
}

func successResult(reference string) *gateway.VerificationResult {
	return &gateway.VerificationResult{
		Verified:  true,
		Reference: reference,
		Amount:    decimal.NewFromInt(10),
		Currency:  "USD",
		RawStatus: "successful",
	}
}

func TestVerifyPayment_fansOutAcrossSharedReference(t *testing.T) {
	db := setupPaymentsTestDB(t)
	ctx := context.Background()

	customerID := uuid.New()
	reference := "FLW-555"

	first := seedPaymentOrder(t, db, customerID, uuid.New(), enums.PaymentMethodCard, enums.PaymentStatusPending, &reference)
	second := seedPaymentOrder(t, db, customerID, uuid.New(), enums.PaymentMethodCard, enums.PaymentStatusPending, &reference)
	approved := seedPaymentOrder(t, db, customerID, uuid.New(), enums.PaymentMethodCard, enums.PaymentStatusApproved, &reference)

	verifier := &stubVerifier{result: successResult(reference)}
	svc := newPaymentService(db, verifier)

	updated, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		Reference:   reference,
		ActorUserID: customerID,
		ActorRole:   enums.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Len(t, updated, 3)
	assert.Equal(t, []string{reference}, verifier.calls)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		var order models.Order
		require.NoError(t, db.First(&order, "id = ?", id).Error)
		assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	}

	var untouched models.Order
	require.NoError(t, db.First(&untouched, "id = ?", approved.ID).Error)
	assert.Equal(t, enums.PaymentStatusApproved, untouched.PaymentStatus, "approved is terminal")
}

func TestVerifyPayment_gatewayRejection(t *testing.T) {
	db := setupPaymentsTestDB(t)
	ctx := context.Background()

	customerID := uuid.New()
	reference := "FLW-556"
	order := seedPaymentOrder(t, db, customerID, uuid.New(), enums.PaymentMethodCard, enums.PaymentStatusPending, &reference)

	verifier := &stubVerifier{result: &gateway.VerificationResult{
		Verified:  false,
		Reference: reference,
		RawStatus: "failed",
	}}
	svc := newPaymentService(db, verifier)

	_, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		Reference:   reference,
		ActorUserID: customerID,
		ActorRole:   enums.RoleCustomer,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())

	var unchanged models.Order
	require.NoError(t, db.First(&unchanged, "id = ?", order.ID).Error)
	assert.Equal(t, enums.PaymentStatusPending, unchanged.PaymentStatus)
}

func TestVerifyPayment_dependencyFailurePropagates(t *testing.T) {
	db := setupPaymentsTestDB(t)
	verifier := &stubVerifier{err: apperrors.New(apperrors.CodeDependency, "gateway unreachable")}
	svc := newPaymentService(db, verifier)

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		Reference:   "FLW-557",
		ActorUserID: uuid.New(),
		ActorRole:   enums.RoleCustomer,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDependency, apperrors.As(err).Code())
}

func TestConfirmBankTransfer(t *testing.T) {
	db := setupPaymentsTestDB(t)
	ctx := context.Background()
	svc := newPaymentService(db, &stubVerifier{})

	customerID := uuid.New()
	order := seedPaymentOrder(t, db, customerID, uuid.New(), enums.PaymentMethodBankTransfer, enums.PaymentStatusPending, nil)

	t.Run("customer attaches reference, order stays pending", func(t *testing.T) {
		updated, err := svc.ConfirmBankTransfer(ctx, ConfirmTransferInput{
			OrderID:     order.ID,
			Reference:   "TRF-001",
			ActorUserID: customerID,
			ActorRole:   enums.RoleCustomer,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.PaymentReference)
		assert.Equal(t, "TRF-001", *updated.PaymentReference)
		assert.Equal(t, enums.PaymentStatusPending, updated.PaymentStatus)
	})

	t.Run("repeat confirmation is a no-op", func(t *testing.T) {
		updated, err := svc.ConfirmBankTransfer(ctx, ConfirmTransferInput{
			OrderID:     order.ID,
			Reference:   "TRF-001",
			ActorUserID: customerID,
			ActorRole:   enums.RoleCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, enums.PaymentStatusPending, updated.PaymentStatus)
	})

	t.Run("non-customer roles are rejected", func(t *testing.T) {
		_, err := svc.ConfirmBankTransfer(ctx, ConfirmTransferInput{
			OrderID:     order.ID,
			Reference:   "TRF-001",
			ActorUserID: customerID,
			ActorRole:   enums.RoleVendor,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())
	})

	t.Run("foreign order is forbidden", func(t *testing.T) {
		_, err := svc.ConfirmBankTransfer(ctx, ConfirmTransferInput{
			OrderID:     order.ID,
			Reference:   "TRF-001",
			ActorUserID: uuid.New(),
			ActorRole:   enums.RoleCustomer,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())
	})

	t.Run("wrong payment method rejected", func(t *testing.T) {
		cardOrder := seedPaymentOrder(t, db, customerID, uuid.New(), enums.PaymentMethodCard, enums.PaymentStatusPending, nil)
		_, err := svc.ConfirmBankTransfer(ctx, ConfirmTransferInput{
			OrderID:     cardOrder.ID,
			Reference:   "TRF-002",
			ActorUserID: customerID,
			ActorRole:   enums.RoleCustomer,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
	})
}

func TestApprovePayment(t *testing.T) {
	db := setupPaymentsTestDB(t)
	ctx := context.Background()
	svc := newPaymentService(db, &stubVerifier{})

	vendorID := uuid.New()
	order := seedPaymentOrder(t, db, uuid.New(), vendorID, enums.PaymentMethodBankTransfer, enums.PaymentStatusPaid, nil)

	t.Run("foreign vendor is forbidden", func(t *testing.T) {
		_, err := svc.ApprovePayment(ctx, ApprovePaymentInput{
			OrderID:     order.ID,
			ActorUserID: uuid.New(),
			ActorRole:   enums.RoleVendor,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())
	})

	t.Run("owning vendor approves", func(t *testing.T) {
		updated, err := svc.ApprovePayment(ctx, ApprovePaymentInput{
			OrderID:     order.ID,
			ActorUserID: vendorID,
			ActorRole:   enums.RoleVendor,
		})
		require.NoError(t, err)
		assert.Equal(t, enums.PaymentStatusApproved, updated.PaymentStatus)
	})

	t.Run("re-approval conflicts", func(t *testing.T) {
		_, err := svc.ApprovePayment(ctx, ApprovePaymentInput{
			OrderID:     order.ID,
			ActorUserID: vendorID,
			ActorRole:   enums.RoleVendor,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
	})

	t.Run("admin approves pending payment directly", func(t *testing.T) {
		pending := seedPaymentOrder(t, db, uuid.New(), vendorID, enums.PaymentMethodCashOnDelivery, enums.PaymentStatusPending, nil)
		updated, err := svc.ApprovePayment(ctx, ApprovePaymentInput{
			OrderID:     pending.ID,
			ActorUserID: uuid.New(),
			ActorRole:   enums.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, enums.PaymentStatusApproved, updated.PaymentStatus)
	})
}
