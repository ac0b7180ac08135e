package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/marketplace/internal/cart/app"
	"github.com/dwikikusuma/marketplace/internal/cart/domain"
	"github.com/dwikikusuma/marketplace/pkg/httpx"
)

type Handler struct {
	svc      *app.Service
	products app.ProductResolver
}

// NewHandler builds the cart routes. products may be nil, in which case lines
// are returned without product data.
func NewHandler(svc *app.Service, products app.ProductResolver) *Handler {
	return &Handler{svc: svc, products: products}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/cart", h.get).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.add).Methods(http.MethodPost)
	r.HandleFunc("/cart", h.clear).Methods(http.MethodDelete)
	r.HandleFunc("/cart/{id}", h.update).Methods(http.MethodPatch)
	r.HandleFunc("/cart/{id}", h.remove).Methods(http.MethodDelete)
}

type lineView struct {
	domain.Line
	Product *app.ProductSummary `json:"product"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.RequiredQuery(r, "userId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	lines, err := h.svc.GetCart(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}

	var products map[string]app.ProductSummary
	if h.products != nil && len(lines) > 0 {
		ids := make([]string, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
		}
		products, err = h.products.Resolve(r.Context(), ids)
		if err != nil {
			httpx.WriteError(w, r, mapErr(err))
			return
		}
	}

	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		v := lineView{Line: l}
		if p, ok := products[l.ProductID]; ok {
			v.Product = &p
		}
		out = append(out, v)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type addRequest struct {
	UserID          string          `json:"userId"`
	ProductID       string          `json:"productId"`
	Quantity        *int64          `json:"quantity"`
	SelectedPackage *domain.Package `json:"selectedPackage"`
}

type addResponse struct {
	Success bool          `json:"success"`
	Cart    []domain.Line `json:"cart"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	verr := &httpx.ValidationError{}
	if strings.TrimSpace(req.UserID) == "" {
		verr.Add("userId", "is required")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		verr.Add("productId", "is required")
	}
	switch {
	case req.Quantity == nil:
		verr.Add("quantity", "is required")
	case *req.Quantity <= 0:
		verr.Add("quantity", "must be positive")
	case *req.Quantity > math.MaxInt32:
		verr.Add("quantity", "is too large")
	}
	if req.SelectedPackage == nil {
		verr.Add("selectedPackage", "is required")
	}
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	lines, err := h.svc.AddItem(r.Context(), req.UserID, req.ProductID, int32(*req.Quantity), *req.SelectedPackage)
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, addResponse{Success: true, Cart: lines})
}

type updateRequest struct {
	Quantity *int64 `json:"quantity"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.RequiredQuery(r, "userId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(w, r, httpx.Invalid("quantity", "is required"))
		return
	}
	if *req.Quantity > math.MaxInt32 || *req.Quantity < math.MinInt32 {
		httpx.WriteError(w, r, httpx.Invalid("quantity", "is out of range"))
		return
	}

	line, removed, err := h.svc.UpdateItem(r.Context(), userID, mux.Vars(r)["id"], int32(*req.Quantity))
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	if removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, line)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.RequiredQuery(r, "userId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if _, err := h.svc.RemoveItem(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.RequiredQuery(r, "userId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.svc.ClearCart(r.Context(), userID); err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrLineNotFound):
		return status.Error(codes.NotFound, "cart line not found")
	case errors.Is(err, app.ErrConflict):
		return status.Error(codes.Aborted, "cart changed concurrently, retry")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
