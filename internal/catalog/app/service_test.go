package app

import (
	"context"
	"testing"

	"github.com/dwikikusuma/marketplace/internal/catalog/domain"
)

type fakeRepo struct {
	created   domain.Product
	lastLimit int
}

func (f *fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	f.created = p
	return p, nil
}
func (f *fakeRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	return domain.Product{}, nil
}
func (f *fakeRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	f.lastLimit = limit
	return nil, "", nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "   ", Currency: "IDR", Amount: 100})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative amount -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Keyboard", Currency: "IDR", Amount: -1})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("empty currency -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Keyboard", Currency: "   ", Amount: 100})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("duplicate package name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, CreateProductInput{
			Name: "Coffee", Currency: "IDR", Amount: 100,
			Packages: []domain.Package{
				{Name: "250g", Price: domain.Money{Amount: 100}},
				{Name: "250g", Price: domain.Money{Amount: 120}},
			},
		})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("package in another currency -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, CreateProductInput{
			Name: "Coffee", Currency: "IDR", Amount: 100,
			Packages: []domain.Package{{Name: "1kg", Price: domain.Money{Currency: "USD", Amount: 5}}},
		})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestCreateProductNormalizesPackages(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name: " Coffee ", Currency: "IDR", Amount: 100,
		Packages: []domain.Package{{Name: " 1kg ", Price: domain.Money{Amount: 350}}},
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if repo.created.Name != "Coffee" {
		t.Fatalf("name not trimmed: %q", repo.created.Name)
	}
	pkg := repo.created.Packages[0]
	if pkg.Name != "1kg" || pkg.Price.Currency != "IDR" {
		t.Fatalf("package not normalized: %+v", pkg)
	}
}

func TestListProductsClampsLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, _, _ = svc.ListProducts(ctx, "", 0, "")
	if repo.lastLimit != 20 {
		t.Fatalf("default limit = %d, want 20", repo.lastLimit)
	}
	_, _, _ = svc.ListProducts(ctx, "", 500, "")
	if repo.lastLimit != 100 {
		t.Fatalf("max limit = %d, want 100", repo.lastLimit)
	}
}

func TestGetProductRequiresID(t *testing.T) {
	svc := NewService(&fakeRepo{})
	if _, err := svc.GetProduct(context.Background(), " "); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
