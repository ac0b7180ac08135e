package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/cart/domain"
)

// Store holds cart lines per user. Implementations own the merge-on-add rule:
// at most one line per (product id, package name) for a given user.
// Add checks limit (see domain.Merge) in the same atomic step as the write
// and fails with domain.ErrLineLimit.
type Store interface {
	Get(ctx context.Context, userID string) ([]domain.Line, error)
	Add(ctx context.Context, userID, productID string, quantity int32, pkg domain.Package, limit int32) ([]domain.Line, error)
	Remove(ctx context.Context, userID, lineID string) ([]domain.Line, error)
	Update(ctx context.Context, userID, lineID string, quantity int32) (domain.Line, error)
	Clear(ctx context.Context, userID string) error
}

// ProductSummary is the catalog data shown next to a cart line.
type ProductSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
}

// ProductResolver looks products up in bulk. Unknown ids are absent from the
// result rather than an error.
type ProductResolver interface {
	Resolve(ctx context.Context, productIDs []string) (map[string]ProductSummary, error)
}
