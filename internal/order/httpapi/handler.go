package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/marketplace/internal/order/app"
	"github.com/dwikikusuma/marketplace/internal/order/domain"
	"github.com/dwikikusuma/marketplace/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts order administration on admin, which is expected to sit
// behind the gate.
func (h *Handler) Register(admin *mux.Router) {
	admin.HandleFunc("/orders", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", h.updateStatus).Methods(http.MethodPatch)
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

	orders, err := h.svc.ListOrders(r.Context(), q.Get("status"), limit)
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]domain.Order{"orders": orders})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		httpx.WriteError(w, r, httpx.Invalid("status", "is required"))
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		httpx.WriteError(w, r, mapErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, app.ErrNotFound):
		return status.Error(codes.NotFound, "order not found")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
