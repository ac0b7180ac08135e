package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/auth/app"
	"github.com/dwikikusuma/marketplace/internal/auth/domain"
)

const findUserSQL = `SELECT id, email, role, is_active FROM users WHERE id = $1`

type userRow struct {
	ID       uuid.UUID `db:"id"`
	Email    string    `db:"email"`
	Role     string    `db:"role"`
	IsActive bool      `db:"is_active"`
}

// Directory reads principals from the users table.
type Directory struct {
	db *sqlx.DB
}

func NewDirectory(db *sqlx.DB) *Directory {
	return &Directory{db: db}
}

var _ app.Directory = (*Directory)(nil)

func (d *Directory) FindByID(ctx context.Context, id string) (domain.Principal, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return domain.Principal{}, app.ErrPrincipalNotFound
	}

	var row userRow
	err = d.db.GetContext(ctx, &row, findUserSQL, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Principal{}, app.ErrPrincipalNotFound
	}
	if err != nil {
		return domain.Principal{}, err
	}

	return domain.Principal{
		ID:     row.ID.String(),
		Email:  row.Email,
		Role:   row.Role,
		Active: row.IsActive,
	}, nil
}
