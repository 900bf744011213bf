// Package apperrors defines the error taxonomy shared by the checkout core
// and the HTTP layer. Everything except PersistenceError is an expected,
// user-facing failure.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced entity does not exist. It is also
// returned when an order exists but belongs to another user, so existence is
// never leaked across owners.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed or missing request field. It is always
// raised before any unit of work opens.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProductNotFoundError identifies the offending product id when a cart
// references a product that does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

// Is makes errors.Is(err, ErrNotFound) hold for missing products.
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientStockError names the product and the quantity actually
// available when a requested quantity cannot be satisfied.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// PaymentErrorKind distinguishes the ways a payment attempt can fail.
type PaymentErrorKind string

const (
	// PaymentDeclined is a well-formed rejection from the gateway.
	PaymentDeclined PaymentErrorKind = "declined"
	// PaymentTimeout means the gateway did not answer within the bound;
	// the gateway-side outcome is unknown.
	PaymentTimeout PaymentErrorKind = "timeout"
	// PaymentUnsupported means no strategy is registered for the method
	// label; no network call was attempted.
	PaymentUnsupported PaymentErrorKind = "unsupported"
	// PaymentMalformed means the gateway answered with a body we could
	// not interpret.
	PaymentMalformed PaymentErrorKind = "malformed"
)

// PaymentError is a failed payment attempt. A single failed attempt is
// terminal for the checkout; the adapter performs no retries.
type PaymentError struct {
	Kind   PaymentErrorKind
	Reason string
}

func (e *PaymentError) Error() string {
	switch e.Kind {
	case PaymentTimeout:
		return "payment gateway timed out: " + e.Reason
	case PaymentUnsupported:
		return e.Reason
	case PaymentMalformed:
		return "unexpected payment gateway response: " + e.Reason
	default:
		return "payment declined: " + e.Reason
	}
}

// PersistenceError wraps an unexpected datastore failure. It is the only
// error in the taxonomy reported to clients as a 5xx.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
