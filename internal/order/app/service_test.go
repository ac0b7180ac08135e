package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dwikikusuma/marketplace/internal/order/domain"
)

type fakeRepo struct {
	created    domain.Order
	status     domain.Status
	listStatus domain.Status
	listLimit  int
}

func (f *fakeRepo) CreateOrderTx(ctx context.Context, o domain.Order) (domain.Order, error) {
	o.ID = "o1"
	f.created = o
	return o, nil
}

func (f *fakeRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return domain.Order{}, ErrNotFound
}

func (f *fakeRepo) ListOrders(ctx context.Context, status domain.Status, limit int) ([]domain.Order, error) {
	f.listStatus, f.listLimit = status, limit
	return nil, nil
}

func (f *fakeRepo) UpdateStatusTx(ctx context.Context, id string, next func(domain.Status) (domain.Status, error)) (domain.Order, error) {
	st, err := next(f.status)
	if err != nil {
		return domain.Order{}, err
	}
	f.status = st
	return domain.Order{ID: id, Status: st}, nil
}

func TestCreateOrderTotals(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	o, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		UserID:         "u1",
		Currency:       "IDR",
		ShippingAmount: 500,
		Items: []domain.OrderItemRequest{
			{ProductID: "p1", Name: "Coffee", PackageName: "1kg", UnitAmount: 300, Quantity: 2},
			{ProductID: "p2", Name: "Tea", UnitAmount: 100, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("status = %s, want PENDING", o.Status)
	}
	if o.SubTotalAmount != 700 || o.TotalAmount != 1200 {
		t.Fatalf("subtotal=%d total=%d, want 700/1200", o.SubTotalAmount, o.TotalAmount)
	}
	if repo.created.OrderItems[0].LineTotalAmount != 600 {
		t.Fatalf("line total = %d, want 600", repo.created.OrderItems[0].LineTotalAmount)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ok := domain.OrderItemRequest{ProductID: "p1", UnitAmount: 1, Quantity: 1}

	cases := map[string]domain.CreateOrderRequest{
		"no user":           {Currency: "IDR", Items: []domain.OrderItemRequest{ok}},
		"no currency":       {UserID: "u1", Items: []domain.OrderItemRequest{ok}},
		"no items":          {UserID: "u1", Currency: "IDR"},
		"negative shipping": {UserID: "u1", Currency: "IDR", ShippingAmount: -1, Items: []domain.OrderItemRequest{ok}},
		"zero quantity":     {UserID: "u1", Currency: "IDR", Items: []domain.OrderItemRequest{{ProductID: "p1", UnitAmount: 1}}},
		"negative unit":     {UserID: "u1", Currency: "IDR", Items: []domain.OrderItemRequest{{ProductID: "p1", UnitAmount: -1, Quantity: 1}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.CreateOrder(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to paid", func(t *testing.T) {
		repo := &fakeRepo{status: domain.StatusPending}
		o, err := NewService(repo).UpdateStatus(ctx, "o1", "paid")
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if o.Status != domain.StatusPaid {
			t.Fatalf("status = %s, want PAID", o.Status)
		}
	})

	t.Run("out of delivered", func(t *testing.T) {
		repo := &fakeRepo{status: domain.StatusDelivered}
		_, err := NewService(repo).UpdateStatus(ctx, "o1", "CANCELLED")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if repo.status != domain.StatusDelivered {
			t.Fatalf("status changed to %s", repo.status)
		}
	})

	t.Run("out of cancelled", func(t *testing.T) {
		repo := &fakeRepo{status: domain.StatusCancelled}
		if _, err := NewService(repo).UpdateStatus(ctx, "o1", "PENDING"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		if _, err := NewService(&fakeRepo{}).UpdateStatus(ctx, "o1", "LOST"); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestListOrdersFilters(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.ListOrders(ctx, "shipped", 0); err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if repo.listStatus != domain.StatusShipped || repo.listLimit != 20 {
		t.Fatalf("got status=%q limit=%d", repo.listStatus, repo.listLimit)
	}

	if _, err := svc.ListOrders(ctx, "bogus", 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
