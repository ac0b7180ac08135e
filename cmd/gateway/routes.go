package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	authapp "github.com/dwikikusuma/marketplace/internal/auth/app"
	authhttp "github.com/dwikikusuma/marketplace/internal/auth/httpapi"
	carthttp "github.com/dwikikusuma/marketplace/internal/cart/httpapi"
	cataloghttp "github.com/dwikikusuma/marketplace/internal/catalog/httpapi"
	checkouthttp "github.com/dwikikusuma/marketplace/internal/checkout/httpapi"
	orderhttp "github.com/dwikikusuma/marketplace/internal/order/httpapi"
	"github.com/dwikikusuma/marketplace/pkg/httpx"
	"github.com/dwikikusuma/marketplace/pkg/metrics"
	"github.com/dwikikusuma/marketplace/pkg/middleware"
)

type routes struct {
	log     *slog.Logger
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
	origins []string

	catalog  *cataloghttp.Handler
	cart     *carthttp.Handler
	checkout *checkouthttp.Handler
	orders   *orderhttp.Handler
	gate     *authapp.Gate

	// ready reports whether downstream dependencies answer.
	ready func(ctx context.Context) error
}

func (rt routes) handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	})

	r.Use(middleware.Observe(rt.log, rt.metrics))
	if rt.limiter != nil {
		r.Use(rt.limiter.Handler)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }).Methods(http.MethodGet)
	r.HandleFunc("/readyz", rt.readyz).Methods(http.MethodGet)
	r.Handle("/metrics", rt.metrics.Handler()).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(authhttp.RequireAdmin(rt.gate, rt.metrics.GateDecision))
	admin.HandleFunc("/me", authhttp.Me).Methods(http.MethodGet)

	rt.catalog.Register(r, admin)
	rt.cart.Register(r)
	rt.checkout.Register(r)
	rt.orders.Register(admin)

	// CORS sits outside the router so preflight requests never need a route.
	return middleware.Recover(middleware.CORS(rt.origins)(r))
}

func (rt routes) readyz(w http.ResponseWriter, r *http.Request) {
	if rt.ready == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := rt.ready(ctx); err != nil {
		rt.log.Warn("readiness check failed", slog.Any("err", err))
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "not ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
}
