package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/marketplace/internal/auth/domain"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrInvalidSession    = errors.New("invalid session")
)

// Gate admits only active admin principals. Both credential sources share
// the same outcome taxonomy: no acceptable credentials is ErrUnauthorized, a
// known active principal without the admin role is ErrForbidden.
type Gate struct {
	source CredentialSource
}

func NewGate(source CredentialSource) *Gate {
	return &Gate{source: source}
}

func (g *Gate) Authorize(ctx context.Context, ev Evidence) (domain.Principal, error) {
	p, err := g.source.Principal(ctx, ev)
	if err != nil {
		return domain.Principal{}, err
	}
	if !p.Active {
		return domain.Principal{}, fmt.Errorf("%w: principal is inactive", ErrUnauthorized)
	}
	if p.Role != domain.RoleAdmin {
		return domain.Principal{}, ErrForbidden
	}
	return p, nil
}

// PairCredentials reads an id and an email from two cookies and requires the
// directory entry for that id to carry exactly that email and be active.
type PairCredentials struct {
	Directory   Directory
	IDCookie    string
	EmailCookie string
}

func (c PairCredentials) Principal(ctx context.Context, ev Evidence) (domain.Principal, error) {
	id := strings.TrimSpace(ev.Cookie(c.IDCookie))
	email := strings.TrimSpace(ev.Cookie(c.EmailCookie))
	if id == "" || email == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing credentials", ErrUnauthorized)
	}

	p, err := c.Directory.FindByID(ctx, id)
	if errors.Is(err, ErrPrincipalNotFound) {
		return domain.Principal{}, fmt.Errorf("%w: unknown principal", ErrUnauthorized)
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("lookup principal: %w", err)
	}

	if p.Email != email {
		return domain.Principal{}, fmt.Errorf("%w: credential mismatch", ErrUnauthorized)
	}
	if !p.Active {
		return domain.Principal{}, fmt.Errorf("%w: principal is inactive", ErrUnauthorized)
	}
	return p, nil
}

// SessionCredentials reads a session token from a cookie, falling back to
// the Authorization bearer token, and resolves it.
type SessionCredentials struct {
	Resolver SessionResolver
	Cookie   string
}

func (c SessionCredentials) Principal(ctx context.Context, ev Evidence) (domain.Principal, error) {
	token := strings.TrimSpace(ev.Cookie(c.Cookie))
	if token == "" {
		token = strings.TrimSpace(ev.BearerToken)
	}
	if token == "" {
		return domain.Principal{}, fmt.Errorf("%w: no session", ErrUnauthorized)
	}

	p, err := c.Resolver.Resolve(ctx, token)
	if errors.Is(err, ErrInvalidSession) {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("resolve session: %w", err)
	}
	if p.ID == "" {
		return domain.Principal{}, fmt.Errorf("%w: no principal for session", ErrUnauthorized)
	}
	return p, nil
}
