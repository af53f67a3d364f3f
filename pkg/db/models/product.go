package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents the canonical vendor listing consumed by checkout.
type Product struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID      uuid.UUID      `gorm:"column:vendor_id;type:uuid;not null"`
	SKU           string         `gorm:"column:sku;not null"`
	Title         string         `gorm:"column:title;not null"`
	Tags          pq.StringArray `gorm:"column:tags;type:text[]"`
	PriceCents    int            `gorm:"column:price_cents;not null"`
	StockQuantity int            `gorm:"column:stock_quantity;not null;default:0"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
