package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/marketplace/internal/auth/app"
	"github.com/dwikikusuma/marketplace/internal/auth/domain"
)

type mapDirectory map[string]domain.Principal

func (d mapDirectory) FindByID(ctx context.Context, id string) (domain.Principal, error) {
	p, ok := d[id]
	if !ok {
		return domain.Principal{}, app.ErrPrincipalNotFound
	}
	return p, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("Authorization") {
		case "Bearer admin":
			_, _ = w.Write([]byte(`{"id":"a1","email":"admin@shop.test","app_metadata":{"role":"admin"},"banned_until":null}`))
		case "Bearer plain":
			_, _ = w.Write([]byte(`{"id":"u1","email":"user@shop.test","app_metadata":{}}`))
		case "Bearer banned":
			_, _ = w.Write([]byte(`{"id":"a2","email":"b@shop.test","app_metadata":{"role":"admin"},"banned_until":"2999-01-01T00:00:00Z"}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveFromProvider(t *testing.T) {
	srv := newServer(t)
	r := NewResolver(Config{URL: srv.URL + "/", AnonKey: "anon"}, nil)
	ctx := context.Background()

	p, err := r.Resolve(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{ID: "a1", Email: "admin@shop.test", Role: "admin", Active: true}, p)

	p, err = r.Resolve(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, p.Role)

	p, err = r.Resolve(ctx, "banned")
	require.NoError(t, err)
	assert.False(t, p.Active)

	_, err = r.Resolve(ctx, "expired")
	assert.ErrorIs(t, err, app.ErrInvalidSession)

	_, err = r.Resolve(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, app.ErrInvalidSession)
}

func TestResolveWithDirectory(t *testing.T) {
	srv := newServer(t)
	dir := mapDirectory{
		"u1": {ID: "u1", Role: domain.RoleAdmin, Active: true},
	}
	r := NewResolver(Config{URL: srv.URL, AnonKey: "anon"}, dir)
	ctx := context.Background()

	p, err := r.Resolve(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, p.Role, "directory role wins")

	p, err = r.Resolve(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, p.Role, "unknown to the directory")
}

func TestBannedUntil(t *testing.T) {
	r := NewResolver(Config{}, nil)
	r.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	srvPast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","banned_until":"2020-01-01T00:00:00Z"}`))
	}))
	defer srvPast.Close()
	r.cfg.URL = srvPast.URL

	p, err := r.Resolve(context.Background(), "t")
	require.NoError(t, err)
	assert.True(t, p.Active)
}
