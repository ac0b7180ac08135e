package domain

import "time"

type Money struct {
	Currency string `json:"currency" yaml:"currency"`
	Amount   int64  `json:"amount" yaml:"amount"`
}

// Package is a priced variant of a product, identified by name.
type Package struct {
	Name  string `json:"name" yaml:"name"`
	Price Money  `json:"price" yaml:"price"`
}

type Product struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Price       Money     `json:"price" yaml:"price"`
	Description string    `json:"description" yaml:"description"`
	Packages    []Package `json:"packages" yaml:"packages"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

// PriceFor returns the unit price of packageName. An empty name is the
// product's base price.
func (p Product) PriceFor(packageName string) (Money, bool) {
	if packageName == "" {
		return p.Price, true
	}
	for _, pkg := range p.Packages {
		if pkg.Name == packageName {
			return pkg.Price, true
		}
	}
	return Money{}, false
}
