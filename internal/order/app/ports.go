package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/order/domain"
)

type OrderRepo interface {
	CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context, status domain.Status, limit int) ([]domain.Order, error)

	// UpdateStatusTx locks the order, asks next for the new status given the
	// current one, and stores it. An error from next aborts the update.
	UpdateStatusTx(ctx context.Context, id string, next func(current domain.Status) (domain.Status, error)) (domain.Order, error)
}
