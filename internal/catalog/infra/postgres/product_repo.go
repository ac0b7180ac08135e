package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/catalog/app"
	"github.com/dwikikusuma/marketplace/internal/catalog/domain"
	pg "github.com/dwikikusuma/marketplace/pkg/postgres"
)

const productColumns = `id, name, description, price_amount, currency, packages, created_at, updated_at`

const createProductSQL = `
INSERT INTO products (id, name, description, price_amount, currency, packages)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

const getProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

const listProductsSQL = `
SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
  AND ($2::uuid IS NULL OR id > $2::uuid)
ORDER BY id
LIMIT $3`

// packages is the JSONB column holding a product's package list.
type packages []domain.Package

func (p packages) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]domain.Package(p))
}

func (p *packages) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = packages{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("packages: unsupported scan type %T", src)
	}
	var out []domain.Package
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("packages: %w", err)
	}
	if out == nil {
		out = []domain.Package{}
	}
	*p = out
	return nil
}

type productRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	PriceAmount int64     `db:"price_amount"`
	Currency    string    `db:"currency"`
	Packages    packages  `db:"packages"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row productRow) toDomain() domain.Product {
	return domain.Product{
		ID:          row.ID.String(),
		Name:        row.Name,
		Description: row.Description,
		Price: domain.Money{
			Amount:   row.PriceAmount,
			Currency: row.Currency,
		},
		Packages:  []domain.Package(row.Packages),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type ProductRepo struct {
	db *sqlx.DB
}

func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

var _ app.ProductRepo = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, createProductSQL,
		uuid.New(),
		p.Name,
		p.Description,
		p.Price.Amount,
		p.Price.Currency,
		packages(p.Packages),
	)
	if pg.IsUniqueViolation(err) {
		return domain.Product{}, fmt.Errorf("%w: %q", app.ErrAlreadyExists, p.Name)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		// Not a key we could ever have issued.
		return domain.Product{}, app.ErrNotFound
	}

	var row productRow
	err = r.db.GetContext(ctx, &row, getProductSQL, prodID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var cur uuid.NullUUID
	if strings.TrimSpace(cursor) != "" {
		uid, err := uuid.Parse(strings.TrimSpace(cursor))
		if err != nil {
			return nil, "", app.ErrInvalidInput
		}
		cur = uuid.NullUUID{UUID: uid, Valid: true}
	}

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, listProductsSQL, strings.TrimSpace(query), cur, limit); err != nil {
		return nil, "", err
	}

	out := make([]domain.Product, 0, len(rows))
	var nextCursor string
	for _, row := range rows {
		out = append(out, row.toDomain())
		nextCursor = row.ID.String()
	}

	if len(out) < limit {
		nextCursor = ""
	}

	return out, nextCursor, nil
}
