package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/models"
)

// ListOrdersByUser retrieves one page of a user's order history, newest
// first, together with the total count of that user's orders.
func (s *Store) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, int, error) {
	s.logger.Debug("listing orders",
		zap.Int64("user_id", userID),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "count orders", Err: err}
	}

	query := `
		SELECT id, user_id, total_amount, status, payment_method, transaction_reference, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "list orders", Err: err}
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	orderIDs := make([]int64, 0)
	byID := make(map[int64]*models.Order)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, &apperrors.PersistenceError{Op: "scan order", Err: err}
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
		byID[order.ID] = order
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "list orders", Err: err}
	}

	if len(orderIDs) > 0 {
		if err := s.attachItems(ctx, orderIDs, byID); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

// GetOrder retrieves a single order scoped to its owner. An order that
// exists but belongs to a different user yields ErrNotFound.
func (s *Store) GetOrder(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, payment_method, transaction_reference, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	row := s.db.QueryRowContext(ctx, query, orderID, userID)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "fetch order", Err: err}
	}

	byID := map[int64]*models.Order{order.ID: order}
	if err := s.attachItems(ctx, []int64{order.ID}, byID); err != nil {
		return nil, err
	}
	return order, nil
}

// attachItems loads line items for the given orders in one query, resolving
// each item's product when it still exists. A deleted product leaves the
// item's product field nil; the item keeps its historical quantity and price.
func (s *Store) attachItems(ctx context.Context, orderIDs []int64, byID map[int64]*models.Order) error {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price,
		       p.id, p.name, p.description, p.price, p.stock, COALESCE(p.sku, ''), p.brand, p.created_at, p.updated_at
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return &apperrors.PersistenceError{Op: "list order items", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var (
			prodID      sql.NullInt64
			prodName    sql.NullString
			prodDesc    sql.NullString
			prodPrice   decimal.NullDecimal
			prodStock   sql.NullInt64
			prodSKU     sql.NullString
			prodBrand   sql.NullString
			prodCreated sql.NullTime
			prodUpdated sql.NullTime
		)

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&prodID,
			&prodName,
			&prodDesc,
			&prodPrice,
			&prodStock,
			&prodSKU,
			&prodBrand,
			&prodCreated,
			&prodUpdated,
		)
		if err != nil {
			return &apperrors.PersistenceError{Op: "scan order item", Err: err}
		}

		if prodID.Valid {
			item.Product = &models.Product{
				ID:          prodID.Int64,
				Name:        prodName.String,
				Description: prodDesc.String,
				Price:       prodPrice.Decimal,
				Stock:       int(prodStock.Int64),
				SKU:         prodSKU.String,
				Brand:       prodBrand.String,
				CreatedAt:   prodCreated.Time,
				UpdatedAt:   prodUpdated.Time,
			}
		}

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return &apperrors.PersistenceError{Op: "list order items", Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var txRef sql.NullString

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMethod,
		&txRef,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if txRef.Valid {
		order.TransactionReference = txRef.String
	}
	order.Items = make([]models.OrderItem, 0)
	return &order, nil
}
