package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/marketplace/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/marketplace/internal/checkout/app"
)

// CartServiceReader reads and clears carts through the cart service.
type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

var (
	_ checkoutapp.CartReader  = (*CartServiceReader)(nil)
	_ checkoutapp.CartClearer = (*CartServiceReader)(nil)
)

func (r *CartServiceReader) GetCart(ctx context.Context, userID string) ([]checkoutapp.CartItem, error) {
	lines, err := r.svc.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]checkoutapp.CartItem, 0, len(lines))
	for _, it := range lines {
		items = append(items, checkoutapp.CartItem{
			LineID:      it.ID,
			ProductID:   it.ProductID,
			PackageName: it.Package.Name,
			Quantity:    int64(it.Quantity),
		})
	}
	return items, nil
}

func (r *CartServiceReader) ClearCart(ctx context.Context, userID string) error {
	return r.svc.ClearCart(ctx, userID)
}
