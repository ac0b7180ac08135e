// Package supabase resolves session tokens against the Supabase auth API.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dwikikusuma/marketplace/internal/auth/app"
	"github.com/dwikikusuma/marketplace/internal/auth/domain"
)

const maxUserBody = 1 << 20

type Config struct {
	URL     string
	AnonKey string
}

// Resolver calls GET {URL}/auth/v1/user with the caller's token. When a
// directory is set, role and active state come from it; a user the directory
// does not know is treated as a plain user.
type Resolver struct {
	cfg       Config
	client    *http.Client
	directory app.Directory

	now func() time.Time
}

func NewResolver(cfg Config, directory app.Directory) *Resolver {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Resolver{
		cfg:       cfg,
		client:    &http.Client{Timeout: 10 * time.Second},
		directory: directory,
		now:       time.Now,
	}
}

var _ app.SessionResolver = (*Resolver)(nil)

func (r *Resolver) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return domain.Principal{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", r.cfg.AnonKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("supabase user lookup: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserBody))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("read supabase response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.Principal{}, fmt.Errorf("%w: %s", app.ErrInvalidSession, gjson.GetBytes(body, "msg").String())
	case resp.StatusCode != http.StatusOK:
		return domain.Principal{}, fmt.Errorf("supabase user lookup: status %d", resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return domain.Principal{}, errors.New("supabase user lookup: malformed body")
	}
	user := gjson.ParseBytes(body)
	id := user.Get("id").String()
	if id == "" {
		return domain.Principal{}, fmt.Errorf("%w: no user id", app.ErrInvalidSession)
	}

	p := domain.Principal{
		ID:     id,
		Email:  user.Get("email").String(),
		Role:   user.Get("app_metadata.role").String(),
		Active: !r.banned(user.Get("banned_until")),
	}
	if p.Role == "" {
		p.Role = domain.RoleUser
	}

	if r.directory == nil {
		return p, nil
	}

	known, err := r.directory.FindByID(ctx, id)
	if errors.Is(err, app.ErrPrincipalNotFound) {
		p.Role = domain.RoleUser
		return p, nil
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("lookup principal: %w", err)
	}
	p.Role = known.Role
	p.Active = p.Active && known.Active
	return p, nil
}

func (r *Resolver) banned(until gjson.Result) bool {
	if !until.Exists() || until.Type == gjson.Null || until.String() == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339Nano, until.String())
	if err != nil {
		return true
	}
	return t.After(r.now())
}
