package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/auth/domain"
)

// Directory looks principals up by id. A missing principal is
// ErrPrincipalNotFound.
type Directory interface {
	FindByID(ctx context.Context, id string) (domain.Principal, error)
}

// SessionResolver turns an opaque session token into a principal. A token
// that does not identify anyone is ErrInvalidSession.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}

// CredentialSource resolves the caller from request evidence. Failures that
// mean "no acceptable credentials" wrap ErrUnauthorized; anything else is an
// infrastructure error.
type CredentialSource interface {
	Principal(ctx context.Context, ev Evidence) (domain.Principal, error)
}

// Evidence is the request-scoped material a credential source may read.
type Evidence struct {
	Cookies     map[string]string
	BearerToken string
}

func (e Evidence) Cookie(name string) string {
	return e.Cookies[name]
}
