package adapter

import (
	"context"
	"errors"
	"fmt"

	catalogapp "github.com/dwikikusuma/marketplace/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/marketplace/internal/checkout/app"
	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

var _ checkoutapp.CatalogReader = (*CatalogServiceReader)(nil)

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (checkoutapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
		return checkoutapp.Product{}, fmt.Errorf("%w: %s", checkoutapp.ErrProductUnavailable, productID)
	}
	if err != nil {
		return checkoutapp.Product{}, err
	}

	packages := make(map[string]domain.Money, len(p.Packages))
	for _, pkg := range p.Packages {
		packages[pkg.Name] = domain.Money{Currency: pkg.Price.Currency, Amount: pkg.Price.Amount}
	}

	return checkoutapp.Product{
		ID:       p.ID,
		Name:     p.Name,
		Currency: p.Price.Currency,
		Amount:   p.Price.Amount,
		Packages: packages,
	}, nil
}
