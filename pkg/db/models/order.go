package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/pkg/enums"
)

// Order is the per-vendor order produced from a checkout. A single checkout
// against a multi-vendor cart yields one Order row per vendor; an order never
// carries line items from more than one vendor.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      string              `gorm:"column:order_number;not null"`
	CustomerID       uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	VendorID         uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null"`
	ShippingAddress  string              `gorm:"column:shipping_address;not null"`
	Phone            string              `gorm:"column:phone;not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentReference *string             `gorm:"column:payment_reference"`
	Status           enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	TrackingNumber   *string             `gorm:"column:tracking_number"`
	TotalCents       int                 `gorm:"column:total_cents;not null"`
	Items            []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveredAt      *time.Time          `gorm:"column:delivered_at"`
	CanceledAt       *time.Time          `gorm:"column:canceled_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
