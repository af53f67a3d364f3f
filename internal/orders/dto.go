package orders

import (
	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	"github.com/tradesphere/tradesphere-backend/pkg/pagination"
)

// PlaceOrderInput carries everything checkout needs, with the acting
// principal resolved by the transport layer.
type PlaceOrderInput struct {
	ShippingAddress  string
	Phone            string
	PaymentMethod    enums.PaymentMethod
	PaymentReference *string

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// UpdateStatusInput moves one order through the fulfillment state machine.
type UpdateStatusInput struct {
	OrderID        uuid.UUID
	NextStatus     enums.OrderStatus
	TrackingNumber *string

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// GetOrderInput fetches a single order subject to ownership checks.
type GetOrderInput struct {
	OrderID uuid.UUID

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// ListCustomerOrdersInput pages through the acting customer's own orders.
type ListCustomerOrdersInput struct {
	Pagination pagination.Params

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// ListVendorOrdersInput pages through a vendor's incoming orders with
// optional status filters.
type ListVendorOrdersInput struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Pagination    pagination.Params

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// VendorOrderFilters is the repository-level shape of the vendor listing query.
type VendorOrderFilters struct {
	VendorID      uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Limit         int
	Cursor        *pagination.Cursor
}

// CustomerOrderFilters is the repository-level shape of the customer listing query.
type CustomerOrderFilters struct {
	CustomerID uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
}

// DashboardSummary aggregates a vendor's order book.
type DashboardSummary struct {
	TotalOrders             int64 `json:"total_orders"`
	PendingOrders           int64 `json:"pending_orders"`
	ProcessingOrders        int64 `json:"processing_orders"`
	ShippedOrders           int64 `json:"shipped_orders"`
	DeliveredOrders         int64 `json:"delivered_orders"`
	CancelledOrders         int64 `json:"cancelled_orders"`
	AwaitingPaymentApproval int64 `json:"awaiting_payment_approval"`
	RevenueCents            int64 `json:"revenue_cents"`
}
