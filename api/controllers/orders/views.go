package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
)

// OrderView is the client-facing order shape.
type OrderView struct {
	ID               uuid.UUID      `json:"id"`
	OrderNumber      string         `json:"order_number"`
	CustomerID       uuid.UUID      `json:"customer_id"`
	VendorID         uuid.UUID      `json:"vendor_id"`
	ShippingAddress  string         `json:"shipping_address"`
	Phone            string         `json:"phone"`
	PaymentMethod    string         `json:"payment_method"`
	PaymentStatus    string         `json:"payment_status"`
	PaymentReference *string        `json:"payment_reference,omitempty"`
	Status           string         `json:"status"`
	TrackingNumber   *string        `json:"tracking_number,omitempty"`
	TotalCents       int            `json:"total_cents"`
	Items            []LineItemView `json:"items"`
	DeliveredAt      *time.Time     `json:"delivered_at,omitempty"`
	CanceledAt       *time.Time     `json:"canceled_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type LineItemView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Qty            int       `json:"qty"`
	TotalCents     int       `json:"total_cents"`
}

func NewOrderView(order models.Order) OrderView {
	items := make([]LineItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItemView{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.TotalCents,
		})
	}

	return OrderView{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		CustomerID:       order.CustomerID,
		VendorID:         order.VendorID,
		ShippingAddress:  order.ShippingAddress,
		Phone:            order.Phone,
		PaymentMethod:    order.PaymentMethod.String(),
		PaymentStatus:    order.PaymentStatus.String(),
		PaymentReference: order.PaymentReference,
		Status:           order.Status.String(),
		TrackingNumber:   order.TrackingNumber,
		TotalCents:       order.TotalCents,
		Items:            items,
		DeliveredAt:      order.DeliveredAt,
		CanceledAt:       order.CanceledAt,
		CreatedAt:        order.CreatedAt,
	}
}

func NewOrderViews(list []models.Order) []OrderView {
	views := make([]OrderView, 0, len(list))
	for _, order := range list {
		views = append(views, NewOrderView(order))
	}
	return views
}
