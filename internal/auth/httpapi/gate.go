package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/marketplace/internal/auth/app"
	"github.com/dwikikusuma/marketplace/internal/auth/domain"
	"github.com/dwikikusuma/marketplace/pkg/httpx"
	"github.com/dwikikusuma/marketplace/pkg/logger"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// EvidenceFrom collects the cookies and bearer token of r.
func EvidenceFrom(r *http.Request) app.Evidence {
	ev := app.Evidence{Cookies: make(map[string]string)}
	for _, c := range r.Cookies() {
		ev.Cookies[c.Name] = c.Value
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			ev.BearerToken = strings.TrimSpace(parts[1])
		}
	}
	return ev
}

// RequireAdmin runs the gate before next. onDecision, when set, receives
// "allowed", "unauthorized", "forbidden" or "error".
func RequireAdmin(gate *app.Gate, onDecision func(outcome string)) mux.MiddlewareFunc {
	record := func(outcome string) {
		if onDecision != nil {
			onDecision(outcome)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := gate.Authorize(r.Context(), EvidenceFrom(r))
			if err != nil {
				outcome := "error"
				switch {
				case errors.Is(err, app.ErrUnauthorized):
					outcome = "unauthorized"
				case errors.Is(err, app.ErrForbidden):
					outcome = "forbidden"
				}
				record(outcome)
				logger.FromContext(r.Context()).Info("admin gate rejected request",
					slog.String("outcome", outcome),
					slog.String("path", r.URL.Path),
					slog.Any("err", err),
				)
				httpx.WriteError(w, r, mapErr(err))
				return
			}

			record("allowed")
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// Me returns the principal the gate admitted.
func Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, mapErr(app.ErrUnauthorized))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, app.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
