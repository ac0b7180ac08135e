package domain

import "time"

type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type QuoteLine struct {
	LineID      string `json:"lineId"`
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	PackageName string `json:"packageName,omitempty"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   Money  `json:"unitPrice"`
	LineTotal   Money  `json:"lineTotal"`
}

type Quote struct {
	UserID string      `json:"userId"`
	Lines  []QuoteLine `json:"lines"`
	Total  Money       `json:"total"`
}

// PlacedOrder is what checkout reports back once the order exists.
type PlacedOrder struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	Subtotal  Money     `json:"subtotal"`
	Shipping  Money     `json:"shipping"`
	Total     Money     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}
