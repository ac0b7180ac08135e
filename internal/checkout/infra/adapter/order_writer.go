package adapter

import (
	"context"
	"errors"
	"fmt"
	"math"

	checkoutapp "github.com/dwikikusuma/marketplace/internal/checkout/app"
	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/marketplace/internal/order/app"
	orderdomain "github.com/dwikikusuma/marketplace/internal/order/domain"
)

type OrderServiceWriter struct {
	svc *orderapp.Service
}

func NewOrderServiceWriter(svc *orderapp.Service) *OrderServiceWriter {
	return &OrderServiceWriter{svc: svc}
}

var _ checkoutapp.OrderWriter = (*OrderServiceWriter)(nil)

func (w *OrderServiceWriter) CreateOrder(ctx context.Context, draft checkoutapp.OrderDraft) (domain.PlacedOrder, error) {
	items := make([]orderdomain.OrderItemRequest, 0, len(draft.Lines))
	for _, ln := range draft.Lines {
		if ln.Quantity > math.MaxInt32 {
			return domain.PlacedOrder{}, fmt.Errorf("%w: quantity too large for line %s", checkoutapp.ErrInvalidInput, ln.LineID)
		}
		items = append(items, orderdomain.OrderItemRequest{
			ProductID:   ln.ProductID,
			Name:        ln.Name,
			PackageName: ln.PackageName,
			UnitAmount:  ln.UnitPrice.Amount,
			Quantity:    int32(ln.Quantity),
		})
	}

	o, err := w.svc.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		UserID:         draft.UserID,
		Currency:       draft.Currency,
		ShippingAmount: draft.ShippingAmount,
		Items:          items,
	})
	if errors.Is(err, orderapp.ErrInvalidInput) {
		return domain.PlacedOrder{}, fmt.Errorf("%w: %v", checkoutapp.ErrInvalidInput, err)
	}
	if err != nil {
		return domain.PlacedOrder{}, err
	}

	return domain.PlacedOrder{
		OrderID:   o.ID,
		Status:    string(o.Status),
		Subtotal:  domain.Money{Currency: o.Currency, Amount: o.SubTotalAmount},
		Shipping:  domain.Money{Currency: o.Currency, Amount: o.ShippingAmount},
		Total:     domain.Money{Currency: o.Currency, Amount: o.TotalAmount},
		CreatedAt: o.CreatedAt,
	}, nil
}
