package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/marketplace/internal/catalog/domain"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("product already exists")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Currency    string
	Amount      int64
	Packages    []domain.Package
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	currency := strings.TrimSpace(in.Currency)

	if name == "" || currency == "" || in.Amount <= 0 {
		return domain.Product{}, ErrInvalidInput
	}

	packages, err := normalizePackages(in.Packages, currency)
	if err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		Name:        name,
		Description: in.Description,
		Price: domain.Money{
			Currency: currency,
			Amount:   in.Amount,
		},
		Packages: packages,
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

// normalizePackages enforces unique non-empty names, positive prices and the
// product's currency on every package.
func normalizePackages(in []domain.Package, currency string) ([]domain.Package, error) {
	out := make([]domain.Package, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, pkg := range in {
		pkg.Name = strings.TrimSpace(pkg.Name)
		if pkg.Name == "" || pkg.Price.Amount <= 0 {
			return nil, ErrInvalidInput
		}
		if _, dup := seen[pkg.Name]; dup {
			return nil, ErrInvalidInput
		}
		seen[pkg.Name] = struct{}{}

		if c := strings.TrimSpace(pkg.Price.Currency); c != "" && c != currency {
			return nil, ErrInvalidInput
		}
		pkg.Price.Currency = currency
		out = append(out, pkg)
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, query, limit, cursor)
}
