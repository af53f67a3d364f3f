package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
)

// Repository covers the cart reads and mutations checkout depends on.
type Repository interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	Save(ctx context.Context, record *models.CartRecord) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	WithTx(tx *gorm.DB) Repository
}

type gormRepo struct {
	conn *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &gormRepo{conn: conn}
}

func (r *gormRepo) WithTx(tx *gorm.DB) Repository {
	return &gormRepo{conn: tx}
}

func (r *gormRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.conn.WithContext(ctx).
		Preload("Items").
		First(&record, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormRepo) Save(ctx context.Context, record *models.CartRecord) error {
	return r.conn.WithContext(ctx).Save(record).Error
}

// Clear removes all items and resets the derived totals, keeping the cart row.
func (r *gormRepo) Clear(ctx context.Context, cartID uuid.UUID) error {
	if err := r.conn.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.conn.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Updates(map[string]any{"total_items": 0, "total_cents": 0}).Error
}
