package repository

import (
	"context"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/models"
)

// ListProducts returns one page of the public catalog plus the total product
// count. Ordered by name for a stable browse order.
func (s *Store) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "count products", Err: err}
	}

	query := `
		SELECT id, name, description, price, stock, COALESCE(sku, ''), brand, created_at, updated_at
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "list products", Err: err}
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Stock,
			&p.SKU,
			&p.Brand,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, &apperrors.PersistenceError{Op: "scan product", Err: err}
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "list products", Err: err}
	}

	return products, total, nil
}
