package domain

import "time"

// Package is the priced variant a shopper picked. Lines merge on Name only.
type Package struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type Line struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int32     `json:"quantity"`
	Package   Package   `json:"selectedPackage"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Matches reports whether l is the merge target for (productID, packageName).
func (l Line) Matches(productID, packageName string) bool {
	return l.ProductID == productID && l.Package.Name == packageName
}
