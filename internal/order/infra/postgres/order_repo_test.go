package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/marketplace/internal/order/app"
	"github.com/dwikikusuma/marketplace/internal/order/domain"
)

var (
	orderCols = []string{"id", "user_id", "status", "currency", "subtotal_amount", "shipping_amount", "total_amount", "created_at", "updated_at"}
	itemCols  = []string{"id", "order_id", "product_id", "name", "package_name", "unit_amount", "quantity", "line_total_amount"}
)

func newMockRepo(t *testing.T) (*OrderRepo, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return NewOrderRepo(sqlx.NewDb(raw, "sqlmock")), mock
}

func sampleOrder() domain.Order {
	return domain.Order{
		UserID:         "u1",
		Status:         domain.StatusPending,
		Currency:       "IDR",
		SubTotalAmount: 600,
		ShippingAmount: 100,
		TotalAmount:    700,
		OrderItems: []domain.OrderItem{
			{ProductID: "p1", Name: "Coffee", PackageName: "1kg", UnitAmount: 300, Quantity: 2, LineTotalAmount: 600},
		},
	}
}

func TestCreateOrderTxCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	orderID, itemID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(sqlmock.AnyArg(), "u1", "PENDING", "IDR", int64(600), int64(100), int64(700)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(orderID.String(), "u1", "PENDING", "IDR", int64(600), int64(100), int64(700), now, now))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(sqlmock.AnyArg(), orderID.String(), 0, "p1", "Coffee", "1kg", int64(300), int32(2), int64(600)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(itemID.String(), orderID.String(), "p1", "Coffee", "1kg", int64(300), int64(2), int64(600)))
	mock.ExpectCommit()

	got, err := repo.CreateOrderTx(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, orderID.String(), got.ID)
	require.Len(t, got.OrderItems, 1)
	assert.Equal(t, "1kg", got.OrderItems[0].PackageName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTxRollsBackOnItemFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(uuid.NewString(), "u1", "PENDING", "IDR", int64(600), int64(100), int64(700), now, now))
	mock.ExpectQuery(`INSERT INTO order_items`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.CreateOrderTx(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert item 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTxLineTotalMismatch(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	o := sampleOrder()
	o.OrderItems[0].LineTotalAmount = 1

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(uuid.NewString(), "u1", "PENDING", "IDR", int64(600), int64(100), int64(700), now, now))
	mock.ExpectRollback()

	_, err := repo.CreateOrderTx(context.Background(), o)
	assert.ErrorContains(t, err, "line total mismatch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder(t *testing.T) {
	t.Run("with items", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery(`FROM orders WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(id.String(), "u1", "PAID", "IDR", int64(600), int64(100), int64(700), now, now))
		mock.ExpectQuery(`FROM order_items WHERE order_id = \$1 ORDER BY position`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow(uuid.NewString(), id.String(), "p1", "Coffee", "", int64(300), int64(2), int64(600)))

		got, err := repo.GetOrder(context.Background(), id.String())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaid, got.Status)
		assert.Len(t, got.OrderItems, 1)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetOrder(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, app.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		repo, _ := newMockRepo(t)
		_, err := repo.GetOrder(context.Background(), "o-1")
		assert.ErrorIs(t, err, app.ErrNotFound)
	})
}

func TestListOrders(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM orders`).
		WithArgs("SHIPPED", 10).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(uuid.NewString(), "u1", "SHIPPED", "IDR", int64(1), int64(0), int64(1), now, now))

	got, err := repo.ListOrders(context.Background(), domain.StatusShipped, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].OrderItems)
}

func TestUpdateStatusTx(t *testing.T) {
	t.Run("applies next status", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PENDING"))
		mock.ExpectQuery(`UPDATE orders SET status`).
			WithArgs(id.String(), "PAID").
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(id.String(), "u1", "PAID", "IDR", int64(1), int64(0), int64(1), now, now))
		mock.ExpectCommit()

		got, err := repo.UpdateStatusTx(context.Background(), id.String(), func(cur domain.Status) (domain.Status, error) {
			assert.Equal(t, domain.StatusPending, cur)
			return domain.StatusPaid, nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaid, got.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected transition rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("DELIVERED"))
		mock.ExpectRollback()

		_, err := repo.UpdateStatusTx(context.Background(), id.String(), func(domain.Status) (domain.Status, error) {
			return "", app.ErrInvalidTransition
		})
		assert.ErrorIs(t, err, app.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.UpdateStatusTx(context.Background(), uuid.NewString(), func(s domain.Status) (domain.Status, error) {
			return s, nil
		})
		assert.ErrorIs(t, err, app.ErrNotFound)
	})
}
