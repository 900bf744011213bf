package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/models"
)

// Store is the PostgreSQL-backed datastore.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("store")}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Ping reports datastore reachability for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinCheckoutTx runs fn inside a transaction with guaranteed
// rollback-on-exit. The deferred rollback covers error returns, panics, and
// the window after a failed commit; rolling back an already-finished
// transaction returns sql.ErrTxDone, which is ignored.
func (s *Store) WithinCheckoutTx(ctx context.Context, fn func(tx CheckoutTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &apperrors.PersistenceError{Op: "begin transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("checkout commit failed", zap.Error(err))
		return &apperrors.PersistenceError{Op: "commit", Err: err}
	}
	return nil
}

// checkoutTx implements CheckoutTx over one *sql.Tx.
type checkoutTx struct {
	tx *sql.Tx
}

func (t *checkoutTx) GetProductForUpdate(ctx context.Context, productID int64) (*models.Product, error) {
	query := `
		SELECT id, name, description, price, stock, COALESCE(sku, ''), brand, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var p models.Product
	err := t.tx.QueryRowContext(ctx, query, productID).Scan(
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
	if err == sql.ErrNoRows {
		return nil, &apperrors.ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "fetch product", Err: err}
	}
	return &p, nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID int64, qty int) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1`,
		productID, qty,
	)
	if err != nil {
		return &apperrors.PersistenceError{Op: "decrement stock", Err: err}
	}

	// The row was locked by GetProductForUpdate earlier in this tx, so a
	// zero-row update means the schema or the orchestrator is broken.
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &apperrors.PersistenceError{Op: "decrement stock", Err: sql.ErrNoRows}
	}
	return nil
}

func (t *checkoutTx) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, total_amount, status, payment_method, transaction_reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		order.UserID,
		order.TotalAmount,
		order.Status,
		order.PaymentMethod,
		nullableString(order.TransactionReference),
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return &apperrors.PersistenceError{Op: "create order", Err: err}
	}
	return nil
}

func (t *checkoutTx) CreateOrderItems(ctx context.Context, orderID int64, items []models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range items {
		items[i].OrderID = orderID
		err := t.tx.QueryRowContext(ctx, query,
			orderID,
			items[i].ProductID,
			items[i].Quantity,
			items[i].UnitPrice,
		).Scan(&items[i].ID)
		if err != nil {
			return &apperrors.PersistenceError{Op: "create order items", Err: err}
		}
	}
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
