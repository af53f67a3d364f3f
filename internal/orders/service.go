package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradesphere/tradesphere-backend/internal/cart"
	"github.com/tradesphere/tradesphere-backend/internal/products"
	"github.com/tradesphere/tradesphere-backend/pkg/db"
	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/pagination"
)

// Service implements order placement, retrieval, and fulfillment updates.
type Service struct {
	repo        Repository
	products    products.Repository
	carts       cart.Repository
	tx          TxRunner
	transitions TransitionTable
	log         *logger.Logger
	now         func() time.Time
}

func NewService(
	repo Repository,
	prods products.Repository,
	carts cart.Repository,
	tx TxRunner,
	transitions TransitionTable,
	log *logger.Logger,
) *Service {
	if transitions == nil {
		transitions = DefaultTransitions()
	}
	return &Service{
		repo:        repo,
		products:    prods,
		carts:       carts,
		tx:          tx,
		transitions: transitions,
		log:         log,
		now:         time.Now,
	}
}

// OrderPage is one page of a cursor-paginated order listing.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
}

// PlaceOrder converts the customer's cart into per-vendor orders inside one
// transaction. Either every vendor order is created and every stock row
// decremented, or nothing is written.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) ([]models.Order, error) {
	if input.ActorRole != enums.RoleCustomer {
		return nil, apperrors.New(apperrors.CodeForbidden, "only customers can place orders")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "shipping address is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "phone is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}

	// A card order may arrive without a reference; it seeds as pending and
	// waits for a later gateway verification.
	reference := normalizeReference(input.PaymentReference)

	var created []models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.repo.WithTx(tx)
		productsRepo := s.products.WithTx(tx)
		cartsRepo := s.carts.WithTx(tx)

		record, err := cartsRepo.FindByCustomer(ctx, input.ActorUserID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading cart")
		}
		if record == nil || len(record.Items) == 0 {
			return apperrors.New(apperrors.CodeValidation, "cart is empty")
		}

		lines, err := s.buildOrderLines(ctx, productsRepo, record.Items)
		if err != nil {
			return err
		}

		byVendor := groupByVendor(lines)
		vendorIDs := sortedVendorIDs(byVendor)

		now := s.now()

		for _, vendorID := range vendorIDs {
			vendorLines := byVendor[vendorID]

			total := 0
			items := make([]models.OrderLineItem, 0, len(vendorLines))
			for _, line := range vendorLines {
				lineTotal := line.product.PriceCents * line.quantity
				total += lineTotal
				items = append(items, models.OrderLineItem{
					ProductID:      line.product.ID,
					Name:           line.product.Title,
					UnitPriceCents: line.product.PriceCents,
					Qty:            line.quantity,
					TotalCents:     lineTotal,
				})
			}

			order := models.Order{
				OrderNumber:      NewOrderNumber(now),
				CustomerID:       input.ActorUserID,
				VendorID:         vendorID,
				ShippingAddress:  input.ShippingAddress,
				Phone:            input.Phone,
				PaymentMethod:    input.PaymentMethod,
				PaymentStatus:    seedPaymentStatus(input.PaymentMethod, reference),
				PaymentReference: reference,
				Status:           enums.OrderStatusPending,
				TotalCents:       total,
				Items:            items,
			}

			if err := ordersRepo.Create(ctx, &order); err != nil {
				// Same-day order number collision: regenerate once.
				if db.IsUniqueViolation(err, "orders_order_number_key") {
					order.OrderNumber = NewOrderNumber(now)
					err = ordersRepo.Create(ctx, &order)
				}
				if err != nil {
					return apperrors.Wrap(apperrors.CodeInternal, err, "creating order")
				}
			}
			created = append(created, order)
		}

		for _, line := range lines {
			ok, err := productsRepo.DecrementStock(ctx, line.product.ID, line.quantity)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "decrementing stock")
			}
			if !ok {
				return apperrors.New(apperrors.CodeStateConflict,
					fmt.Sprintf("insufficient stock for product %q", line.product.Title))
			}
		}

		if err := cartsRepo.Clear(ctx, record.ID); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "clearing cart")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"customer_id": input.ActorUserID.String(),
		"orders":      len(created),
	}), "order placement completed")

	return created, nil
}

type orderLine struct {
	product  models.Product
	quantity int
}

// buildOrderLines validates every cart item against the live catalog. Missing
// or inactive products fail the whole checkout rather than being skipped.
func (s *Service) buildOrderLines(ctx context.Context, repo products.Repository, items []models.CartItem) ([]orderLine, error) {
	lines := make([]orderLine, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "cart item quantity must be positive")
		}

		product, err := repo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
		}
		if product == nil || !product.IsActive {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("product %s is unavailable", item.ProductID))
		}
		if product.StockQuantity < item.Quantity {
			return nil, apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("insufficient stock for product %q", product.Title))
		}

		lines = append(lines, orderLine{product: *product, quantity: item.Quantity})
	}
	return lines, nil
}

func groupByVendor(lines []orderLine) map[uuid.UUID][]orderLine {
	grouped := make(map[uuid.UUID][]orderLine)
	for _, line := range lines {
		grouped[line.product.VendorID] = append(grouped[line.product.VendorID], line)
	}
	return grouped
}

// sortedVendorIDs keeps the per-vendor order creation sequence deterministic.
func sortedVendorIDs(grouped map[uuid.UUID][]orderLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// seedPaymentStatus marks card payments carrying a gateway reference as paid
// immediately; everything else starts pending.
func seedPaymentStatus(method enums.PaymentMethod, reference *string) enums.PaymentStatus {
	if method == enums.PaymentMethodCard && reference != nil {
		return enums.PaymentStatusPaid
	}
	return enums.PaymentStatusPending
}

func normalizeReference(reference *string) *string {
	if reference == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reference)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// GetOrder loads one order and enforces ownership. Existing orders the actor
// cannot see yield a forbidden error, not a not-found.
func (s *Service) GetOrder(ctx context.Context, input GetOrderInput) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
	}

	if !canAccessOrder(order, input.ActorUserID, input.ActorRole) {
		return nil, apperrors.New(apperrors.CodeForbidden, "order belongs to another account")
	}

	return order, nil
}

func canAccessOrder(order *models.Order, actorID uuid.UUID, role enums.Role) bool {
	switch role {
	case enums.RoleAdmin:
		return true
	case enums.RoleCustomer:
		return order.CustomerID == actorID
	case enums.RoleVendor:
		return order.VendorID == actorID
	default:
		return false
	}
}

// ListCustomerOrders pages through the acting customer's own orders, newest first.
func (s *Service) ListCustomerOrders(ctx context.Context, input ListCustomerOrdersInput) (*OrderPage, error) {
	if input.ActorRole != enums.RoleCustomer && input.ActorRole != enums.RoleAdmin {
		return nil, apperrors.New(apperrors.CodeForbidden, "customer order listing requires a customer account")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	results, err := s.repo.ListByCustomer(ctx, CustomerOrderFilters{
		CustomerID: input.ActorUserID,
		Limit:      limit + 1,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing orders")
	}

	return buildPage(results, limit), nil
}

// ListVendorOrders pages through orders addressed to the acting vendor.
func (s *Service) ListVendorOrders(ctx context.Context, input ListVendorOrdersInput) (*OrderPage, error) {
	if input.ActorRole != enums.RoleVendor && input.ActorRole != enums.RoleAdmin {
		return nil, apperrors.New(apperrors.CodeForbidden, "vendor order listing requires a vendor account")
	}

	if input.Status != nil && !input.Status.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown status %q", *input.Status))
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown payment status %q", *input.PaymentStatus))
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	results, err := s.repo.ListByVendor(ctx, VendorOrderFilters{
		VendorID:      input.ActorUserID,
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
		Limit:         limit + 1,
		Cursor:        cursor,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing vendor orders")
	}

	return buildPage(results, limit), nil
}

func buildPage(results []models.Order, limit int) *OrderPage {
	page := &OrderPage{Orders: results}
	if len(results) > limit {
		page.Orders = results[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page
}

// UpdateStatus moves an order through fulfillment. Vendors may only touch
// their own orders; admins may touch any.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.ActorRole != enums.RoleVendor && input.ActorRole != enums.RoleAdmin {
		return nil, apperrors.New(apperrors.CodeForbidden, "fulfillment updates require a vendor or admin account")
	}
	if !input.NextStatus.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown status %q", input.NextStatus))
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
	}
	if input.ActorRole == enums.RoleVendor && order.VendorID != input.ActorUserID {
		return nil, apperrors.New(apperrors.CodeForbidden, "order belongs to another vendor")
	}

	tracking := normalizeReference(input.TrackingNumber)

	// Re-submitting the current status still persists a corrected tracking
	// number.
	if order.Status == input.NextStatus {
		if tracking == nil {
			return order, nil
		}
		order.TrackingNumber = tracking
		if err := s.repo.Update(ctx, order); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating order")
		}
		return order, nil
	}
	if !s.transitions.Allows(order.Status, input.NextStatus) {
		return nil, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, input.NextStatus))
	}

	now := s.now()
	order.Status = input.NextStatus

	if tracking != nil {
		order.TrackingNumber = tracking
	}

	switch input.NextStatus {
	case enums.OrderStatusDelivered:
		order.DeliveredAt = &now
	case enums.OrderStatusCancelled:
		// Stock is not restored on cancellation; replenishment is a
		// deliberate catalog operation.
		order.CanceledAt = &now
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating order")
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"status":   order.Status.String(),
	}), "order status updated")

	return order, nil
}
