package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chickenshop-admin/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrOrderNotFound is returned when no order matches the given id
var ErrOrderNotFound = errors.New("order not found")

const orderItemWithProductColumns = `
	oi.id, oi.order_id, oi.product_id, oi.quantity,
	p.id AS "product.id", p.slug AS "product.slug", p.flavor AS "product.flavor",
	p.size AS "product.size", p.price AS "product.price", p.category_id AS "product.category_id",
	p.hero_image AS "product.hero_image", p.created_at AS "product.created_at"`

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	return nil
}

// GetOrderCreationTimes retrieves the creation timestamp of every order in storage order
func (s *Store) GetOrderCreationTimes(ctx context.Context) ([]time.Time, error) {
	var times []time.Time
	err := s.db.SelectContext(ctx, &times, "SELECT created_at FROM orders")
	return times, err
}

// GetAllOrderItems retrieves every order item joined with its product
func (s *Store) GetAllOrderItems(ctx context.Context) ([]models.OrderItemWithProduct, error) {
	var items []models.OrderItemWithProduct
	err := s.db.SelectContext(ctx, &items,
		"SELECT"+orderItemWithProductColumns+`
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		ORDER BY oi.id`)
	return items, err
}

// GetOrdersWithProducts retrieves all orders, newest first, with items, products and the ordering user
func (s *Store) GetOrdersWithProducts(ctx context.Context) ([]models.OrderWithProducts, error) {
	var orders []models.OrderWithProducts
	err := s.db.SelectContext(ctx, &orders, `
		SELECT o.*, COALESCE(u.email, '') AS user_email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	query, args, err := sqlx.In("SELECT"+orderItemWithProductColumns+`
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.id`, ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItemWithProduct
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}

	byOrder := make(map[int64][]models.OrderItemWithProduct, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}

	return orders, nil
}
