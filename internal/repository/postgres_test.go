package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joansfix/shop-api/internal/models"
)

func TestStore_WithinCheckoutTx(t *testing.T) {
	// TODO: add integration tests against a disposable database
	t.Skip("Integration test - requires database")
}

func TestStore_ListOrdersByUser(t *testing.T) {
	t.Skip("Integration test - requires database")
}

func TestStore_GetOrder(t *testing.T) {
	t.Skip("Integration test - requires database")
}

func TestStore_ListProducts(t *testing.T) {
	t.Skip("Integration test - requires database")
}

// fakeRow feeds canned column values into a Scan call.
type fakeRow struct {
	values []interface{}
}

func (r *fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		switch target := d.(type) {
		case *int64:
			*target = r.values[i].(int64)
		case *decimal.Decimal:
			*target = r.values[i].(decimal.Decimal)
		case *models.OrderStatus:
			*target = r.values[i].(models.OrderStatus)
		case *string:
			*target = r.values[i].(string)
		case *time.Time:
			*target = r.values[i].(time.Time)
		default:
			// sql.NullString and friends take their driver value directly.
			if scanner, ok := d.(interface{ Scan(interface{}) error }); ok {
				if err := scanner.Scan(r.values[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func TestScanOrder(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &fakeRow{values: []interface{}{
		int64(7),
		int64(1),
		decimal.RequireFromString("200.00"),
		models.OrderStatusCompleted,
		"CreditCard",
		"TX-TEST-12345",
		created,
	}}

	order, err := scanOrder(row)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if order.ID != 7 || order.UserID != 1 {
		t.Errorf("ids = %d/%d, want 7/1", order.ID, order.UserID)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("200.00")) {
		t.Errorf("total = %s, want 200.00", order.TotalAmount)
	}
	if order.TransactionReference != "TX-TEST-12345" {
		t.Errorf("transaction reference = %q", order.TransactionReference)
	}
	if order.Items == nil {
		t.Errorf("items should be an empty slice, not nil")
	}
}

func TestScanOrder_NullTransactionReference(t *testing.T) {
	row := &fakeRow{values: []interface{}{
		int64(8),
		int64(1),
		decimal.RequireFromString("50.00"),
		models.OrderStatusCancelled,
		"CreditCard",
		nil,
		time.Now(),
	}}

	order, err := scanOrder(row)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if order.TransactionReference != "" {
		t.Errorf("transaction reference = %q, want empty for NULL", order.TransactionReference)
	}
}

func TestNullableString(t *testing.T) {
	if v := nullableString(""); v.Valid {
		t.Errorf("empty string should map to NULL")
	}
	if v := nullableString("TX-1"); !v.Valid || v.String != "TX-1" {
		t.Errorf("non-empty string should stay valid, got %+v", v)
	}
}
