package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/api/middleware"
	"github.com/tradesphere/tradesphere-backend/api/responses"
	"github.com/tradesphere/tradesphere-backend/api/validators"
	ordersvc "github.com/tradesphere/tradesphere-backend/internal/orders"
	"github.com/tradesphere/tradesphere-backend/internal/payments"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/pagination"
)

type placeOrderRequest struct {
	ShippingAddress  string  `json:"shipping_address" validate:"required"`
	Phone            string  `json:"phone" validate:"required"`
	PaymentMethod    string  `json:"payment_method" validate:"required,oneof=cash_on_delivery bank_transfer card"`
	PaymentReference *string `json:"payment_reference" validate:"omitempty,min=4"`
}

// Place converts the customer's cart into per-vendor orders.
func Place(svc *ordersvc.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body placeOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), w, log, apperrors.Wrap(apperrors.CodeValidation, err, "invalid payment method"))
			return
		}

		actorID, role, ok := principal(r)
		if !ok {
			responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}

		created, err := svc.PlaceOrder(r.Context(), ordersvc.PlaceOrderInput{
			ShippingAddress:  body.ShippingAddress,
			Phone:            body.Phone,
			PaymentMethod:    method,
			PaymentReference: body.PaymentReference,
			ActorUserID:      actorID,
			ActorRole:        role,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		responses.WriteSuccess(w, http.StatusCreated, map[string]any{
			"orders": NewOrderViews(created),
		})
	}
}

type verifyPaymentRequest struct {
	Reference string `json:"reference" validate:"required,min=4"`
}

// VerifyPayment reconciles a gateway reference across the orders it covers.
func VerifyPayment(svc *payments.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		actorID, role, ok := principal(r)
		if !ok {
			responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}

		updated, err := svc.VerifyPayment(r.Context(), payments.VerifyPaymentInput{
			Reference:   body.Reference,
			ActorUserID: actorID,
			ActorRole:   role,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, map[string]any{
			"orders": NewOrderViews(updated),
		})
	}
}

type confirmTransferRequest struct {
	Reference string `json:"reference" validate:"required,min=4"`
}

// ConfirmTransfer records a customer's bank-transfer reference on their order.
func ConfirmTransfer(svc *payments.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		var body confirmTransferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		actorID, role, ok := principal(r)
		if !ok {
			responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}

		order, err := svc.ConfirmBankTransfer(r.Context(), payments.ConfirmTransferInput{
			OrderID:     orderID,
			Reference:   body.Reference,
			ActorUserID: actorID,
			ActorRole:   role,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, NewOrderView(*order))
	}
}

// ApprovePayment finalizes payment on one order.
func ApprovePayment(svc *payments.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		actorID, role, ok := principal(r)
		if !ok {
			responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}

		order, err := svc.ApprovePayment(r.Context(), payments.ApprovePaymentInput{
			OrderID:     orderID,
			ActorUserID: actorID,
			ActorRole:   role,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, NewOrderView(*order))
	}
}

type updateStatusRequest struct {
	Status         string  `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	TrackingNumber *string `json:"tracking_number" validate:"omitempty,min=4"`
}

// UpdateStatus moves an order through fulfillment.
func UpdateStatus(svc *ordersvc.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		next, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), w, log, apperrors.Wrap(apperrors.CodeValidation, err, "invalid status"))
			return
		}

		actorID, role, ok := principal(r)
		if !ok {
			responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), ordersvc.UpdateStatusInput{
			OrderID:        orderID,
			NextStatus:     next,
			TrackingNumber: body.TrackingNumber,
			ActorUserID:    actorID,
			ActorRole:      role,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, NewOrderView(*order))
	}
}

// ListMine pages through the acting customer's orders.
func ListMine(svc *ordersvc.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, ok := principal(r)
		if !ok {
			responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		page, err := svc.ListCustomerOrders(r.Context(), ordersvc.ListCustomerOrdersInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
			ActorUserID: actorID,
			ActorRole:   role,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, map[string]any{
			"orders":      NewOrderViews(page.Orders),
			"next_cursor": page.NextCursor,
		})
	}
}

// Detail returns one order subject to ownership rules.
func Detail(svc *ordersvc.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		actorID, role, ok := principal(r)
		if !ok {
			responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}

		order, err := svc.GetOrder(r.Context(), ordersvc.GetOrderInput{
			OrderID:     orderID,
			ActorUserID: actorID,
			ActorRole:   role,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, log, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, NewOrderView(*order))
	}
}

func principal(r *http.Request) (uuid.UUID, enums.Role, bool) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := middleware.RoleFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	return actorID, role, true
}

func pathOrderID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.CodeValidation, "orderId must be a valid uuid")
	}
	return id, nil
}
