package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
	"github.com/dwikikusuma/marketplace/pkg/logger"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = fmt.Errorf("%w: product unavailable", ErrInvalidInput)
)

type Service struct {
	Cart    CartReader
	Catalog CatalogReader
	Orders  OrderWriter
	Clearer CartClearer

	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, orders OrderWriter, clearer CartClearer, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		Orders:        orders,
		Clearer:       clearer,
		maxConcurrent: maxConcurrent,
	}
}

func (s *Service) Quote(ctx context.Context, userID string) (domain.Quote, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Quote{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.Cart.GetCart(ctx, userID)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be greater than zero for line %s: %d", ErrInvalidInput, it.LineID, it.Quantity)
			}

			product, err := s.Catalog.GetProduct(gctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			unit, ok := unitPrice(product, it.PackageName)
			if !ok {
				return fmt.Errorf("%w: product %s has no package %q", ErrInvalidInput, it.ProductID, it.PackageName)
			}

			lines[idx] = domain.QuoteLine{
				LineID:      it.LineID,
				ProductID:   product.ID,
				Name:        product.Name,
				PackageName: it.PackageName,
				Quantity:    it.Quantity,
				UnitPrice:   unit,
				LineTotal: domain.Money{
					Currency: unit.Currency,
					Amount:   unit.Amount * it.Quantity,
				},
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	currency := lines[0].LineTotal.Currency
	var totalAmount int64
	for _, line := range lines {
		if line.LineTotal.Currency != currency {
			return domain.Quote{}, fmt.Errorf("%w: cart mixes %s and %s", ErrInvalidInput, currency, line.LineTotal.Currency)
		}
		totalAmount += line.LineTotal.Amount
	}

	return domain.Quote{
		UserID: userID,
		Lines:  lines,
		Total: domain.Money{
			Currency: currency,
			Amount:   totalAmount,
		},
	}, nil
}

func unitPrice(p Product, packageName string) (domain.Money, bool) {
	if packageName == "" {
		return domain.Money{Currency: p.Currency, Amount: p.Amount}, true
	}
	m, ok := p.Packages[packageName]
	return m, ok
}

// PlaceOrder turns the current cart into an order. The cart is cleared
// afterwards; a failure to clear is logged and does not undo the order.
func (s *Service) PlaceOrder(ctx context.Context, userID string, shippingAmount int64) (domain.PlacedOrder, error) {
	if shippingAmount < 0 {
		return domain.PlacedOrder{}, fmt.Errorf("%w: shipping amount cannot be negative", ErrInvalidInput)
	}

	quote, err := s.Quote(ctx, userID)
	if err != nil {
		return domain.PlacedOrder{}, err
	}

	placed, err := s.Orders.CreateOrder(ctx, OrderDraft{
		UserID:         quote.UserID,
		Currency:       quote.Total.Currency,
		ShippingAmount: shippingAmount,
		Lines:          quote.Lines,
	})
	if err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("create order: %w", err)
	}

	if s.Clearer != nil {
		if err := s.Clearer.ClearCart(ctx, quote.UserID); err != nil {
			logger.FromContext(ctx).Warn("order placed but cart not cleared",
				slog.String("user_id", quote.UserID),
				slog.String("order_id", placed.OrderID),
				slog.Any("err", err),
			)
		}
	}

	return placed, nil
}
