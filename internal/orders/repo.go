package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	"github.com/tradesphere/tradesphere-backend/pkg/pagination"
)

type gormRepo struct {
	conn *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &gormRepo{conn: conn}
}

func (r *gormRepo) WithTx(tx *gorm.DB) Repository {
	return &gormRepo{conn: tx}
}

func (r *gormRepo) Create(ctx context.Context, order *models.Order) error {
	return r.conn.WithContext(ctx).Create(order).Error
}

func (r *gormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.conn.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepo) FindByPaymentReference(ctx context.Context, reference string) ([]models.Order, error) {
	var results []models.Order
	err := r.conn.WithContext(ctx).
		Where("payment_reference = ?", reference).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gormRepo) ListByCustomer(ctx context.Context, filters CustomerOrderFilters) ([]models.Order, error) {
	query := r.conn.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", filters.CustomerID)

	query = applyCursor(query, filters.Cursor)

	var results []models.Order
	err := query.
		Order("created_at DESC, id DESC").
		Limit(filters.Limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gormRepo) ListByVendor(ctx context.Context, filters VendorOrderFilters) ([]models.Order, error) {
	query := r.conn.WithContext(ctx).
		Preload("Items").
		Where("vendor_id = ?", filters.VendorID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}

	query = applyCursor(query, filters.Cursor)

	var results []models.Order
	err := query.
		Order("created_at DESC, id DESC").
		Limit(filters.Limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gormRepo) Update(ctx context.Context, order *models.Order) error {
	return r.conn.WithContext(ctx).Save(order).Error
}

func (r *gormRepo) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status enums.PaymentStatus) error {
	return r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("payment_status", status).Error
}

func (r *gormRepo) CountByVendorAndStatus(ctx context.Context, vendorID uuid.UUID, status *enums.OrderStatus) (int64, error) {
	query := r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("vendor_id = ?", vendorID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountVendorAwaitingApproval counts orders whose payment is confirmed but
// not yet approved by the vendor.
func (r *gormRepo) CountVendorAwaitingApproval(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("vendor_id = ? AND payment_status = ?", vendorID, enums.PaymentStatusPaid).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SumVendorRevenue totals orders whose payment has at least been confirmed.
func (r *gormRepo) SumVendorRevenue(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var total int64
	err := r.conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("vendor_id = ? AND payment_status IN ?", vendorID, []enums.PaymentStatus{
			enums.PaymentStatusPaid,
			enums.PaymentStatusApproved,
		}).
		Select("COALESCE(SUM(total_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func applyCursor(query *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor == nil {
		return query
	}
	return query.Where(
		"created_at < ? OR (created_at = ? AND id < ?)",
		cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
	)
}
