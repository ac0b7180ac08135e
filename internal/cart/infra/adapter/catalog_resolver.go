package adapter

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	cartapp "github.com/dwikikusuma/marketplace/internal/cart/app"
	catalogapp "github.com/dwikikusuma/marketplace/internal/catalog/app"
)

type CatalogResolver struct {
	svc           *catalogapp.Service
	maxConcurrent int
}

func NewCatalogResolver(svc *catalogapp.Service, maxConcurrent int) *CatalogResolver {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &CatalogResolver{svc: svc, maxConcurrent: maxConcurrent}
}

var _ cartapp.ProductResolver = (*CatalogResolver)(nil)

func (r *CatalogResolver) Resolve(ctx context.Context, productIDs []string) (map[string]cartapp.ProductSummary, error) {
	out := make(map[string]cartapp.ProductSummary, len(productIDs))
	var mu sync.Mutex

	seen := make(map[string]struct{}, len(productIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)

	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		id := id
		g.Go(func() error {
			p, err := r.svc.GetProduct(ctx, id)
			if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
				return nil
			}
			if err != nil {
				return err
			}

			mu.Lock()
			out[id] = cartapp.ProductSummary{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Currency:    p.Price.Currency,
				Amount:      p.Price.Amount,
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
