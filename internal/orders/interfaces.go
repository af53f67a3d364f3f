package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
)

// Repository is the persistence surface for orders.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentReference(ctx context.Context, reference string) ([]models.Order, error)
	ListByCustomer(ctx context.Context, filters CustomerOrderFilters) ([]models.Order, error)
	ListByVendor(ctx context.Context, filters VendorOrderFilters) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status enums.PaymentStatus) error
	CountByVendorAndStatus(ctx context.Context, vendorID uuid.UUID, status *enums.OrderStatus) (int64, error)
	CountVendorAwaitingApproval(ctx context.Context, vendorID uuid.UUID) (int64, error)
	SumVendorRevenue(ctx context.Context, vendorID uuid.UUID) (int64, error)
	WithTx(tx *gorm.DB) Repository
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
