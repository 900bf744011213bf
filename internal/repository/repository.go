package repository

import (
	"context"

	"github.com/joansfix/shop-api/internal/models"
)

// CheckoutStore opens checkout units of work. Everything the orchestrator
// reads or writes during a checkout goes through the CheckoutTx handed to fn;
// if fn returns an error the unit of work is rolled back, otherwise it is
// committed. Rollback is also attempted on the commit failure path, and a
// second rollback of an already-finished transaction is swallowed.
type CheckoutStore interface {
	WithinCheckoutTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// CheckoutTx is the set of operations available inside one checkout unit of
// work. There is no ambient transaction handle; every call happens on this
// explicit value.
type CheckoutTx interface {
	// GetProductForUpdate fetches a product and row-locks it for the rest
	// of the transaction, serializing concurrent checkouts that touch the
	// same product.
	GetProductForUpdate(ctx context.Context, productID int64) (*models.Product, error)

	// DecrementStock unconditionally reduces stock by qty. It performs no
	// floor check itself; the orchestrator verifies sufficiency first,
	// which keeps the primitive composable inside a unit of work that may
	// be rolled back.
	DecrementStock(ctx context.Context, productID int64, qty int) error

	// CreateOrder inserts the order row and fills in ID and CreatedAt.
	CreateOrder(ctx context.Context, order *models.Order) error

	// CreateOrderItems inserts the order's line items.
	CreateOrderItems(ctx context.Context, orderID int64, items []models.OrderItem) error
}

// OrderReader provides ownership-scoped read access to persisted orders.
type OrderReader interface {
	// ListOrdersByUser returns one page of the user's orders, newest
	// first, with line items and still-existing products resolved, plus
	// the user's total order count.
	ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, int, error)

	// GetOrder returns the order only when it is owned by userID;
	// otherwise apperrors.ErrNotFound, so existence is not leaked.
	GetOrder(ctx context.Context, orderID, userID int64) (*models.Order, error)
}

// OrderCache caches the first page of a user's order history.
type OrderCache interface {
	GetFirstPage(ctx context.Context, userID int64) (*models.OrderPage, error)
	SetFirstPage(ctx context.Context, userID int64, page *models.OrderPage) error
	Invalidate(ctx context.Context, userID int64) error
}

// Ensure the Postgres store implements the checkout and read contracts.
var (
	_ CheckoutStore = (*Store)(nil)
	_ OrderReader   = (*Store)(nil)
	_ OrderCache    = (*RedisOrderCache)(nil)
)
