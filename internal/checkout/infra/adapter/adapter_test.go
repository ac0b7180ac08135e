package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/dwikikusuma/marketplace/internal/cart/app"
	"github.com/dwikikusuma/marketplace/internal/cart/domain"
	cartmemory "github.com/dwikikusuma/marketplace/internal/cart/infra/memory"
	catalogapp "github.com/dwikikusuma/marketplace/internal/catalog/app"
	catalogmemory "github.com/dwikikusuma/marketplace/internal/catalog/infra/memory"
	checkoutapp "github.com/dwikikusuma/marketplace/internal/checkout/app"
)

func TestQuoteThroughServices(t *testing.T) {
	ctx := context.Background()

	products, err := catalogmemory.Load([]byte(`
products:
  - id: p1
    name: Coffee
    price: {currency: IDR, amount: 100}
    packages:
      - {name: small, price: {amount: 10}}
`))
	require.NoError(t, err)
	catalog := catalogapp.NewService(products)

	carts := cartapp.NewService(cartmemory.NewStore(), cartapp.Options{})
	_, err = carts.AddItem(ctx, "u1", "p1", 2, domain.Package{Name: "small", Price: "10"})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "u1", "p1", 3, domain.Package{Name: "small", Price: "10"})
	require.NoError(t, err)

	reader := NewCartServiceReader(carts)
	svc := checkoutapp.NewService(reader, NewCatalogServiceReader(catalog), nil, reader, 4)

	q, err := svc.Quote(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, int64(5), q.Lines[0].Quantity)
	assert.Equal(t, int64(50), q.Total.Amount)

	require.NoError(t, reader.ClearCart(ctx, "u1"))
	_, err = svc.Quote(ctx, "u1")
	assert.ErrorIs(t, err, checkoutapp.ErrEmptyCart)
}

func TestCatalogReaderMissingProduct(t *testing.T) {
	r := NewCatalogServiceReader(catalogapp.NewService(catalogmemory.NewProductRepo()))
	_, err := r.GetProduct(context.Background(), "nope")
	assert.ErrorIs(t, err, checkoutapp.ErrProductUnavailable)
	assert.ErrorIs(t, err, checkoutapp.ErrInvalidInput)
}
