package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/order/app"
	"github.com/dwikikusuma/marketplace/internal/order/domain"
	pg "github.com/dwikikusuma/marketplace/pkg/postgres"
)

const orderColumns = `id, user_id, status, currency, subtotal_amount, shipping_amount, total_amount, created_at, updated_at`

const itemColumns = `id, order_id, product_id, name, package_name, unit_amount, quantity, line_total_amount`

const (
	createOrderSQL = `
INSERT INTO orders (id, user_id, status, currency, subtotal_amount, shipping_amount, total_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns

	addOrderItemSQL = `
INSERT INTO order_items (id, order_id, position, product_id, name, package_name, unit_amount, quantity, line_total_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + itemColumns

	getOrderSQL       = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	lockOrderSQL      = `SELECT status FROM orders WHERE id = $1 FOR UPDATE`
	listOrderItemsSQL = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY position`

	listOrdersSQL = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2`

	updateStatusSQL = `
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns
)

type orderRow struct {
	ID             uuid.UUID `db:"id"`
	UserID         string    `db:"user_id"`
	Status         string    `db:"status"`
	Currency       string    `db:"currency"`
	SubtotalAmount int64     `db:"subtotal_amount"`
	ShippingAmount int64     `db:"shipping_amount"`
	TotalAmount    int64     `db:"total_amount"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (o orderRow) toDomain(items []domain.OrderItem) domain.Order {
	return domain.Order{
		ID:             o.ID.String(),
		UserID:         o.UserID,
		Status:         domain.Status(o.Status),
		Currency:       o.Currency,
		SubTotalAmount: o.SubtotalAmount,
		ShippingAmount: o.ShippingAmount,
		TotalAmount:    o.TotalAmount,
		OrderItems:     items,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

type itemRow struct {
	ID              uuid.UUID `db:"id"`
	OrderID         uuid.UUID `db:"order_id"`
	ProductID       string    `db:"product_id"`
	Name            string    `db:"name"`
	PackageName     string    `db:"package_name"`
	UnitAmount      int64     `db:"unit_amount"`
	Quantity        int32     `db:"quantity"`
	LineTotalAmount int64     `db:"line_total_amount"`
}

func (row itemRow) toDomain() domain.OrderItem {
	return domain.OrderItem{
		ID:              row.ID.String(),
		OrderID:         row.OrderID.String(),
		ProductID:       row.ProductID,
		Name:            row.Name,
		PackageName:     row.PackageName,
		UnitAmount:      row.UnitAmount,
		Quantity:        row.Quantity,
		LineTotalAmount: row.LineTotalAmount,
	}
}

type OrderRepo struct {
	db *sqlx.DB
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

var _ app.OrderRepo = (*OrderRepo)(nil)

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	var createdOrder domain.Order

	err := pg.ExecTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var o orderRow
		err := tx.GetContext(ctx, &o, createOrderSQL,
			uuid.New(),
			order.UserID,
			string(order.Status),
			order.Currency,
			order.SubTotalAmount,
			order.ShippingAmount,
			order.TotalAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		orderItems := make([]domain.OrderItem, 0, len(order.OrderItems))

		for i, item := range order.OrderItems {
			expected := item.UnitAmount * int64(item.Quantity)
			if item.LineTotalAmount != expected {
				return fmt.Errorf("item %d: line total mismatch", i)
			}

			var row itemRow
			err := tx.GetContext(ctx, &row, addOrderItemSQL,
				uuid.New(),
				o.ID,
				i,
				item.ProductID,
				item.Name,
				item.PackageName,
				item.UnitAmount,
				item.Quantity,
				item.LineTotalAmount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
			orderItems = append(orderItems, row.toDomain())
		}

		createdOrder = o.toDomain(orderItems)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return createdOrder, nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	var o orderRow
	err = r.db.GetContext(ctx, &o, getOrderSQL, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, listOrderItemsSQL, orderID); err != nil {
		return domain.Order{}, fmt.Errorf("load order items: %w", err)
	}
	items := make([]domain.OrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return o.toDomain(items), nil
}

// ListOrders returns order headers only; items are loaded by GetOrder.
func (r *OrderRepo) ListOrders(ctx context.Context, status domain.Status, limit int) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, listOrdersSQL, string(status), limit); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(nil))
	}
	return out, nil
}

func (r *OrderRepo) UpdateStatusTx(ctx context.Context, id string, next func(current domain.Status) (domain.Status, error)) (domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	var updated domain.Order
	err = pg.ExecTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current string
		err := tx.GetContext(ctx, &current, lockOrderSQL, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return app.ErrNotFound
		}
		if err != nil {
			return err
		}

		status, err := next(domain.Status(current))
		if err != nil {
			return err
		}

		var o orderRow
		if err := tx.GetContext(ctx, &o, updateStatusSQL, orderID, string(status)); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		updated = o.toDomain(nil)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}
