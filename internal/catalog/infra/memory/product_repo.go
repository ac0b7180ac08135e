// Package memory is a catalog held in process memory, optionally seeded from
// a YAML file.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dwikikusuma/marketplace/internal/catalog/app"
	"github.com/dwikikusuma/marketplace/internal/catalog/domain"
)

type ProductRepo struct {
	mu       sync.RWMutex
	products map[string]domain.Product

	now func() time.Time
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		products: make(map[string]domain.Product),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ app.ProductRepo = (*ProductRepo)(nil)

type seedFile struct {
	Products []domain.Product `yaml:"products"`
}

// LoadFile builds a repository from a YAML document with a top-level
// "products" list. Products without an id get a fresh one.
func LoadFile(path string) (*ProductRepo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return Load(raw)
}

func Load(raw []byte) (*ProductRepo, error) {
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}

	r := NewProductRepo()
	now := r.now()
	for i, p := range seed.Products {
		if strings.TrimSpace(p.Name) == "" || p.Price.Amount <= 0 || p.Price.Currency == "" {
			return nil, fmt.Errorf("catalog seed product %d: name, price.amount and price.currency are required", i)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, dup := r.products[p.ID]; dup {
			return nil, fmt.Errorf("catalog seed product %d: duplicate id %q", i, p.ID)
		}
		for j := range p.Packages {
			if p.Packages[j].Price.Currency == "" {
				p.Packages[j].Price.Currency = p.Price.Currency
			}
		}
		if p.Packages == nil {
			p.Packages = []domain.Package{}
		}
		p.CreatedAt, p.UpdatedAt = now, now
		r.products[p.ID] = p
	}
	return r, nil
}

func (r *ProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.products {
		if strings.EqualFold(existing.Name, p.Name) {
			return domain.Product{}, fmt.Errorf("%w: %q", app.ErrAlreadyExists, p.Name)
		}
	}

	now := r.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Packages == nil {
		p.Packages = []domain.Package{}
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *ProductRepo) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	return p, nil
}

// List orders by id and pages with the last id of the previous page, the same
// keyset the Postgres repository uses.
func (r *ProductRepo) List(_ context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	cursor = strings.TrimSpace(cursor)

	ids := make([]string, 0, len(r.products))
	for id, p := range r.products {
		if cursor != "" && id <= cursor {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.products[id])
	}

	var next string
	if len(out) == limit && len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}
