package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/marketplace/internal/catalog/app"
	"github.com/dwikikusuma/marketplace/internal/catalog/domain"
	"github.com/dwikikusuma/marketplace/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the public product routes on public and the product
// management routes on admin, which is expected to sit behind the gate.
func (h *Handler) Register(public, admin *mux.Router) {
	public.HandleFunc("/products", h.list).Methods(http.MethodGet)
	public.HandleFunc("/products/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/products", h.create).Methods(http.MethodPost)
}

type listResponse struct {
	Products   []domain.Product `json:"products"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.WriteError(w, r, httpx.Invalid("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	products, next, err := h.svc.ListProducts(r.Context(), q.Get("q"), limit, q.Get("cursor"))
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Products: products, NextCursor: next})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

type createRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *domain.Money    `json:"price"`
	Packages    []domain.Package `json:"packages"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	verr := &httpx.ValidationError{}
	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", "is required")
	}
	if req.Price == nil {
		verr.Add("price", "is required")
	}
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), app.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Currency:    req.Price.Currency,
		Amount:      req.Price.Amount,
		Packages:    req.Packages,
	})
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func mapErr(err error) error {
	if errors.Is(err, app.ErrInvalidInput) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if errors.Is(err, app.ErrNotFound) {
		return status.Error(codes.NotFound, "product not found")
	}
	if errors.Is(err, app.ErrAlreadyExists) {
		return status.Error(codes.AlreadyExists, "a product with this name already exists")
	}
	return status.Error(codes.Internal, err.Error())
}
