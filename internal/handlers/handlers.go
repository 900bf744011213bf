package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/models"
)

// CheckoutRunner runs the order checkout transaction.
type CheckoutRunner interface {
	Checkout(ctx context.Context, userID int64, req *models.CheckoutRequest) (*models.Order, error)
}

// OrderHistory reads a user's persisted orders.
type OrderHistory interface {
	ListOrders(ctx context.Context, userID int64, page, pageSize int) (*models.OrderPage, error)
	GetOrder(ctx context.Context, orderID, userID int64) (*models.Order, error)
}

// ProductLister reads the public catalog.
type ProductLister interface {
	ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, int, error)
}

// Handlers holds the HTTP handlers for the shop API.
type Handlers struct {
	checkout CheckoutRunner
	orders   OrderHistory
	products ProductLister
	logger   *zap.Logger
}

// NewHandlers creates the handlers.
func NewHandlers(checkout CheckoutRunner, orders OrderHistory, products ProductLister, logger *zap.Logger) *Handlers {
	return &Handlers{
		checkout: checkout,
		orders:   orders,
		products: products,
		logger:   logger.Named("handlers"),
	}
}
