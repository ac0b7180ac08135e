package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus accepts any letter case.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

// Final reports whether no further transition is allowed.
func (s Status) Final() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	Status         Status      `json:"status"`
	Currency       string      `json:"currency"`
	SubTotalAmount int64       `json:"subtotalAmount"`
	ShippingAmount int64       `json:"shippingAmount"`
	TotalAmount    int64       `json:"totalAmount"`
	OrderItems     []OrderItem `json:"items,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID              string `json:"id"`
	OrderID         string `json:"orderId"`
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	PackageName     string `json:"packageName,omitempty"`
	UnitAmount      int64  `json:"unitAmount"`
	Quantity        int32  `json:"quantity"`
	LineTotalAmount int64  `json:"lineTotalAmount"`
}

type CreateOrderRequest struct {
	UserID         string
	Currency       string
	ShippingAmount int64
	Items          []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID   string
	Name        string
	PackageName string
	UnitAmount  int64
	Quantity    int32
}
