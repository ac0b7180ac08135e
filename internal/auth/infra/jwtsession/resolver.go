// Package jwtsession resolves HS256-signed session tokens locally.
package jwtsession

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dwikikusuma/marketplace/internal/auth/app"
	"github.com/dwikikusuma/marketplace/internal/auth/domain"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Resolver struct {
	secret []byte
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

var _ app.SessionResolver = (*Resolver)(nil)

// Resolve accepts only HS256 tokens that carry an unexpired exp claim.
func (r *Resolver) Resolve(_ context.Context, token string) (domain.Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", app.ErrInvalidSession, err)
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return domain.Principal{}, fmt.Errorf("%w: token has no user", app.ErrInvalidSession)
	}
	role := claims.Role
	if role == "" {
		role = domain.RoleUser
	}

	return domain.Principal{
		ID:     id,
		Email:  claims.Email,
		Role:   role,
		Active: true,
	}, nil
}

// Issue signs claims for the given principal. Used by tooling and tests.
func (r *Resolver) Issue(p domain.Principal, claims jwt.RegisteredClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           p.ID,
		Email:            p.Email,
		Role:             p.Role,
		RegisteredClaims: claims,
	})
	return tok.SignedString(r.secret)
}
