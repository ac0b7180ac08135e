package main

import (
	"context"
	"errors"
	"fmt"

	catalogapp "github.com/dwikikusuma/marketplace/internal/catalog/app"
	"github.com/dwikikusuma/marketplace/internal/catalog/domain"
)

const pageSize = 100

// eachProduct walks every product of svc in id order.
func eachProduct(ctx context.Context, svc *catalogapp.Service, fn func(domain.Product) error) error {
	cursor := ""
	for {
		page, next, err := svc.ListProducts(ctx, "", pageSize, cursor)
		if err != nil {
			return err
		}
		for _, p := range page {
			if err := fn(p); err != nil {
				return err
			}
		}
		if next == "" {
			return nil
		}
		cursor = next
	}
}

func countProducts(ctx context.Context, svc *catalogapp.Service) (int, error) {
	n := 0
	err := eachProduct(ctx, svc, func(domain.Product) error {
		n++
		return nil
	})
	return n, err
}

type importResult struct {
	Imported int
	Skipped  int
}

// importCatalog creates every product of from in to. Products whose name
// already exists in to are skipped, so a rerun is harmless. The destination
// assigns fresh ids; onImported, when set, sees each (seed id, new id) pair.
func importCatalog(ctx context.Context, from, to *catalogapp.Service, onImported func(seedID, newID string)) (importResult, error) {
	var res importResult
	err := eachProduct(ctx, from, func(p domain.Product) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := to.CreateProduct(ctx, catalogapp.CreateProductInput{
			Name:        p.Name,
			Description: p.Description,
			Currency:    p.Price.Currency,
			Amount:      p.Price.Amount,
			Packages:    p.Packages,
		})
		if errors.Is(err, catalogapp.ErrAlreadyExists) {
			res.Skipped++
			return nil
		}
		if err != nil {
			return fmt.Errorf("product %s: %w", p.ID, err)
		}
		res.Imported++
		if onImported != nil {
			onImported(p.ID, created.ID)
		}
		return nil
	})
	return res, err
}
