package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
)

// Dashboard aggregates a vendor's order counts and confirmed revenue.
func (s *Service) Dashboard(ctx context.Context, vendorID uuid.UUID, role enums.Role) (*DashboardSummary, error) {
	if role != enums.RoleVendor && role != enums.RoleAdmin {
		return nil, apperrors.New(apperrors.CodeForbidden, "dashboard requires a vendor or admin account")
	}

	summary := &DashboardSummary{}

	total, err := s.repo.CountByVendorAndStatus(ctx, vendorID, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "counting orders")
	}
	summary.TotalOrders = total

	counts := map[enums.OrderStatus]*int64{
		enums.OrderStatusPending:    &summary.PendingOrders,
		enums.OrderStatusProcessing: &summary.ProcessingOrders,
		enums.OrderStatusShipped:    &summary.ShippedOrders,
		enums.OrderStatusDelivered:  &summary.DeliveredOrders,
		enums.OrderStatusCancelled:  &summary.CancelledOrders,
	}
	for status, dest := range counts {
		status := status
		count, err := s.repo.CountByVendorAndStatus(ctx, vendorID, &status)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "counting orders by status")
		}
		*dest = count
	}

	awaiting, err := s.repo.CountVendorAwaitingApproval(ctx, vendorID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "counting orders awaiting approval")
	}
	summary.AwaitingPaymentApproval = awaiting

	revenue, err := s.repo.SumVendorRevenue(ctx, vendorID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "summing revenue")
	}
	summary.RevenueCents = revenue

	return summary, nil
}
