package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a persisted purchase. Status is COMPLETED at creation for the
// synchronous payment path and never transitions afterwards.
type Order struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"userId"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	Status               OrderStatus     `json:"status"`
	PaymentMethod        string          `json:"paymentMethod"`
	TransactionReference string          `json:"transactionReference,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	Items                []OrderItem     `json:"items"`
}

// OrderItem is one product+quantity line within an order. UnitPrice is the
// product price captured at checkout time, deliberately decoupled from the
// product's current price so purchase history survives price changes.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	// Product is resolved on reads; nil when the referenced product has
	// since been deleted.
	Product *Product `json:"product,omitempty"`
}

// OrderPage is one page of a user's order history.
type OrderPage struct {
	Orders     []*Order `json:"orders"`
	TotalItems int      `json:"totalItems"`
}
