package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord holds the single active cart for a customer. TotalItems and
// TotalCents are derived from live catalog prices and recomputed on every
// item mutation, unlike order totals which freeze prices at placement.
type CartRecord struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID  `gorm:"column:customer_id;type:uuid;not null;uniqueIndex"`
	TotalItems int        `gorm:"column:total_items;not null;default:0"`
	TotalCents int        `gorm:"column:total_cents;not null;default:0"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
