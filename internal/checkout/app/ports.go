package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
)

type CartReader interface {
	GetCart(ctx context.Context, userID string) ([]CartItem, error)
}

type CartItem struct {
	LineID      string
	ProductID   string
	PackageName string
	Quantity    int64
}

// CartClearer empties a cart once its order is placed.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID       string
	Name     string
	Currency string
	Amount   int64

	// Packages maps a package name to its price.
	Packages map[string]domain.Money
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (domain.PlacedOrder, error)
}

type OrderDraft struct {
	UserID         string
	Currency       string
	ShippingAmount int64
	Lines          []domain.QuoteLine
}
