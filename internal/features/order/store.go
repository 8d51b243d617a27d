package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *store {
	return &store{
		db: db,
	}
}

// createOne persists the order and its line items in one transaction and
// fills in the store-generated id and timestamps.
func (s *store) createOne(ctx context.Context, newOrder *Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	orderQuery := `INSERT INTO orders(user_id, total_amount, shipping_address, payment_method, status)
		VALUES($1, $2, $3, $4, $5)
		RETURNING order_id, created_at, updated_at`

	err = tx.QueryRowContext(
		ctx,
		orderQuery,
		newOrder.UserID,
		newOrder.TotalAmount,
		newOrder.ShippingAddress,
		newOrder.PaymentMethod,
		newOrder.Status,
	).Scan(
		&newOrder.OrderID,
		&newOrder.CreatedAt,
		&newOrder.UpdatedAt,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf(
			"failed to insert new order in order store: %w",
			err,
		)
	}

	itemQuery := `INSERT INTO order_items(order_id, product_id, product_name, quantity, price_at_purchase)
		VALUES($1, $2, $3, $4, $5)`

	for _, item := range newOrder.Items {
		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			newOrder.OrderID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.PriceAtPurchase,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf(
				"failed to insert order item in order store: %w",
				err,
			)
		}
	}

	return tx.Commit()
}

func (s *store) findByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	query := `SELECT order_id, user_id, total_amount, shipping_address, payment_method, status, created_at, updated_at
		FROM orders WHERE order_id = $1`

	foundOrder := new(Order)
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&foundOrder.OrderID,
		&foundOrder.UserID,
		&foundOrder.TotalAmount,
		&foundOrder.ShippingAddress,
		&foundOrder.PaymentMethod,
		&foundOrder.Status,
		&foundOrder.CreatedAt,
		&foundOrder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, servererrors.ErrOrderNotFound
		}

		return nil, fmt.Errorf(
			"failed to scan order from order store: %w",
			err,
		)
	}

	if err := s.loadItems(ctx, []*Order{foundOrder}); err != nil {
		return nil, err
	}

	return foundOrder, nil
}

func (s *store) findAllByUserID(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	query := `SELECT order_id, user_id, total_amount, shipping_address, payment_method, status, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	return s.queryOrders(ctx, query, userID)
}

func (s *store) findAll(ctx context.Context) ([]*Order, error) {
	query := `SELECT order_id, user_id, total_amount, shipping_address, payment_method, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC`

	return s.queryOrders(ctx, query)
}

func (s *store) updateStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID,
		status,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to update order status in order store: %w",
			err,
		)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return servererrors.ErrOrderNotFound
	}

	return nil
}

func (s *store) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get orders from order store: %w",
			err,
		)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		foundOrder := new(Order)
		err := rows.Scan(
			&foundOrder.OrderID,
			&foundOrder.UserID,
			&foundOrder.TotalAmount,
			&foundOrder.ShippingAddress,
			&foundOrder.PaymentMethod,
			&foundOrder.Status,
			&foundOrder.CreatedAt,
			&foundOrder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to scan order from order store: %w",
				err,
			)
		}
		orders = append(orders, foundOrder)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// loadItems fetches the line items for all given orders in one query and
// attaches them in the stored order.
func (s *store) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ordersByID := make(map[uuid.UUID]*Order, len(orders))
	orderIDs := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ordersByID[o.OrderID] = o
		orderIDs[i] = o.OrderID
	}

	query := `SELECT order_id, product_id, product_name, quantity, price_at_purchase
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_item_id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return fmt.Errorf(
			"failed to get order items from order store: %w",
			err,
		)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item OrderLineItem

		err := rows.Scan(
			&orderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.PriceAtPurchase,
		)
		if err != nil {
			return fmt.Errorf(
				"failed to scan order item from order store: %w",
				err,
			)
		}

		if owner, ok := ordersByID[orderID]; ok {
			owner.Items = append(owner.Items, item)
		}
	}

	return rows.Err()
}
