package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/marketplace/internal/checkout/app"
	"github.com/dwikikusuma/marketplace/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/checkout/quote", h.quote).Methods(http.MethodGet)
	r.HandleFunc("/checkout/orders", h.placeOrder).Methods(http.MethodPost)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.RequiredQuery(r, "userId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	q, err := h.svc.Quote(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, q)
}

type placeOrderRequest struct {
	UserID         string `json:"userId"`
	ShippingAmount int64  `json:"shippingAmount"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	verr := &httpx.ValidationError{}
	if strings.TrimSpace(req.UserID) == "" {
		verr.Add("userId", "is required")
	}
	if req.ShippingAmount < 0 {
		verr.Add("shippingAmount", "cannot be negative")
	}
	if err := verr.Err(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	placed, err := h.svc.PlaceOrder(r.Context(), req.UserID, req.ShippingAmount)
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, placed)
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrEmptyCart):
		return status.Error(codes.NotFound, "cart is empty")
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Errorf(codes.Internal, "checkout failed: %v", err)
	}
}
