package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/internal/products"
	"github.com/tradesphere/tradesphere-backend/pkg/db/models"
)

// Service recomputes derived cart totals against live catalog prices.
type Service struct {
	carts    Repository
	products products.Repository
}

func NewService(carts Repository, prods products.Repository) *Service {
	return &Service{carts: carts, products: prods}
}

// RecalculateTotals refreshes TotalItems and TotalCents on the customer's
// cart. Items referencing deleted or inactive products stay in the cart but
// contribute zero; checkout is where they hard-fail.
func (s *Service) RecalculateTotals(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	productIDs := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	catalog, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	priceByID := make(map[uuid.UUID]int, len(catalog))
	for _, product := range catalog {
		if product.IsActive {
			priceByID[product.ID] = product.PriceCents
		}
	}

	totalItems := 0
	totalCents := 0
	for _, item := range record.Items {
		totalItems += item.Quantity
		if price, ok := priceByID[item.ProductID]; ok {
			totalCents += price * item.Quantity
		}
	}

	record.TotalItems = totalItems
	record.TotalCents = totalCents

	if err := s.carts.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
