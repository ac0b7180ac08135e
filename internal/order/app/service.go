package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/marketplace/internal/order/domain"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return domain.Order{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return domain.Order{}, fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: items must not be empty", ErrInvalidInput)
	}
	if req.ShippingAmount < 0 {
		return domain.Order{}, fmt.Errorf("%w: shipping amount cannot be negative, got %d", ErrInvalidInput, req.ShippingAmount)
	}

	orderItem := make([]domain.OrderItem, 0, len(req.Items))
	var subTotalAmount int64 = 0

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.UnitAmount < 0 {
			return domain.Order{}, fmt.Errorf("%w: item %d: unit amount cannot be negative, got %d", ErrInvalidInput, i, item.UnitAmount)
		}
		if strings.TrimSpace(item.ProductID) == "" {
			return domain.Order{}, fmt.Errorf("%w: item %d: product id is required", ErrInvalidInput, i)
		}

		orderItem = append(orderItem, domain.OrderItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			PackageName:     item.PackageName,
			UnitAmount:      item.UnitAmount,
			Quantity:        item.Quantity,
			LineTotalAmount: item.UnitAmount * int64(item.Quantity),
		})

		subTotalAmount += item.UnitAmount * int64(item.Quantity)
	}

	order := domain.Order{
		UserID:         req.UserID,
		Status:         domain.StatusPending,
		Currency:       req.Currency,
		ShippingAmount: req.ShippingAmount,
		SubTotalAmount: subTotalAmount,
		TotalAmount:    subTotalAmount + req.ShippingAmount,
		OrderItems:     orderItem,
	}

	return s.repo.CreateOrderTx(ctx, order)
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrInvalidInput
	}
	return s.repo.GetOrder(ctx, id)
}

// ListOrders filters by status when status is non-empty, newest first.
func (s *Service) ListOrders(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	var st domain.Status
	if strings.TrimSpace(status) != "" {
		parsed, ok := domain.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		st = parsed
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListOrders(ctx, st, limit)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrInvalidInput
	}
	next, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	return s.repo.UpdateStatusTx(ctx, id, func(current domain.Status) (domain.Status, error) {
		if current.Final() && current != next {
			return "", fmt.Errorf("%w: order is %s", ErrInvalidTransition, current)
		}
		return next, nil
	})
}
