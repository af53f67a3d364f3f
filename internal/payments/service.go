package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/internal/orders"
	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/gateway"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
)

// Verifier is the slice of the gateway client payments depend on.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*gateway.VerificationResult, error)
}

// Service reconciles order payment status against the external gateway and
// handles the manual bank-transfer and vendor approval flows.
type Service struct {
	repo    orders.Repository
	gateway Verifier
	log     *logger.Logger
}

func NewService(repo orders.Repository, verifier Verifier, log *logger.Logger) *Service {
	return &Service{repo: repo, gateway: verifier, log: log}
}

// VerifyPaymentInput identifies the gateway reference to reconcile.
type VerifyPaymentInput struct {
	Reference string

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// ConfirmTransferInput records a customer's claim of a completed bank transfer.
type ConfirmTransferInput struct {
	OrderID   uuid.UUID
	Reference string

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// ApprovePaymentInput finalizes payment on one order.
type ApprovePaymentInput struct {
	OrderID uuid.UUID

	ActorUserID uuid.UUID
	ActorRole   enums.Role
}

// VerifyPayment checks a reference with the gateway and, on success, marks
// every order sharing that reference as paid. Approved orders are terminal
// and left untouched.
func (s *Service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) ([]models.Order, error) {
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "payment reference is required")
	}

	result, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !result.Verified {
		return nil, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("gateway reports transaction %s as %q", reference, result.RawStatus))
	}

	matched, err := s.repo.FindByPaymentReference(ctx, reference)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading orders by reference")
	}
	if len(matched) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "no orders match this payment reference")
	}

	if input.ActorRole == enums.RoleCustomer {
		for _, order := range matched {
			if order.CustomerID != input.ActorUserID {
				return nil, apperrors.New(apperrors.CodeForbidden, "payment reference belongs to another account")
			}
		}
	}

	updated := make([]models.Order, 0, len(matched))
	for _, order := range matched {
		if order.PaymentStatus == enums.PaymentStatusApproved {
			updated = append(updated, order)
			continue
		}
		if err := s.repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPaid); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating payment status")
		}
		order.PaymentStatus = enums.PaymentStatusPaid
		updated = append(updated, order)
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"reference": reference,
		"orders":    len(updated),
	}), "payment verified")

	return updated, nil
}

// ConfirmBankTransfer attaches the customer's transfer reference to their
// order. The order stays pending until a vendor approves it; calling this
// twice with the same reference is a no-op.
func (s *Service) ConfirmBankTransfer(ctx context.Context, input ConfirmTransferInput) (*models.Order, error) {
	if input.ActorRole != enums.RoleCustomer {
		return nil, apperrors.New(apperrors.CodeForbidden, "only customers can confirm bank transfers")
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "transfer reference is required")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
	}
	if order.CustomerID != input.ActorUserID {
		return nil, apperrors.New(apperrors.CodeForbidden, "order belongs to another account")
	}
	if order.PaymentMethod != enums.PaymentMethodBankTransfer {
		return nil, apperrors.New(apperrors.CodeValidation, "order was not placed with bank transfer")
	}
	if order.PaymentStatus == enums.PaymentStatusApproved {
		return nil, apperrors.New(apperrors.CodeStateConflict, "payment is already approved")
	}

	order.PaymentReference = &reference
	order.PaymentStatus = enums.PaymentStatusPending

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating order")
	}

	return order, nil
}

// ApprovePayment finalizes payment on one order. Approved is terminal:
// re-approving is a conflict, and nothing moves an approved order back.
func (s *Service) ApprovePayment(ctx context.Context, input ApprovePaymentInput) (*models.Order, error) {
	if input.ActorRole != enums.RoleVendor && input.ActorRole != enums.RoleAdmin {
		return nil, apperrors.New(apperrors.CodeForbidden, "payment approval requires a vendor or admin account")
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
	if order.PaymentStatus == enums.PaymentStatusApproved {
		return nil, apperrors.New(apperrors.CodeStateConflict, "payment is already approved")
	}

	if err := s.repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusApproved); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating payment status")
	}
	order.PaymentStatus = enums.PaymentStatusApproved

	s.log.Info(s.log.WithField(ctx, "order_id", order.ID.String()), "payment approved")

	return order, nil
}
