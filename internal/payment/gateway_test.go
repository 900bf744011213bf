package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/models"
)

func testDetails() models.PaymentDetails {
	return models.PaymentDetails{
		CardNumber: "4111 1111 1111 1111",
		CVV:        "123",
		ExpMonth:   "12",
		ExpYear:    "2030",
		CardHolder: "APPROVED",
	}
}

func newTestGateway(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*GatewayClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewGatewayClient(config.GatewayConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: timeout,
	}, zap.NewNop())
	return client, srv
}

func TestGatewayCharge_Success(t *testing.T) {
	var got map[string]any
	client, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments" {
			t.Errorf("path = %s, want /payments", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {"transaction_id": "TX-TEST-12345"}}`))
	}, 5*time.Second)

	txID, err := client.Charge(context.Background(), decimal.RequireFromString("200.00"), testDetails())
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if txID != "TX-TEST-12345" {
		t.Errorf("transaction id = %q, want TX-TEST-12345", txID)
	}

	// The gateway speaks kebab-case fields and a string amount.
	if got["amount"] != "200.00" {
		t.Errorf("amount = %v, want the string 200.00", got["amount"])
	}
	if got["card-number"] != "4111111111111111" {
		t.Errorf("card-number = %v, want spaces stripped", got["card-number"])
	}
	if got["full-name"] != "APPROVED" {
		t.Errorf("full-name = %v", got["full-name"])
	}
	if got["currency"] != "USD" {
		t.Errorf("currency = %v, want the USD default", got["currency"])
	}
}

func TestGatewayCharge_DeclinedWithErrorsMap(t *testing.T) {
	client, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"success": false, "message": "payment failed",
			"errors": {"card": "insufficient funds"}}`))
	}, 5*time.Second)

	_, err := client.Charge(context.Background(), decimal.RequireFromString("10.00"), testDetails())

	var payErr *apperrors.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
	if payErr.Kind != apperrors.PaymentDeclined {
		t.Errorf("kind = %s, want declined", payErr.Kind)
	}
	if payErr.Reason != "card: insufficient funds" {
		t.Errorf("reason = %q, want the errors map detail", payErr.Reason)
	}
}

func TestGatewayCharge_DeclinedWithMessageOnly(t *testing.T) {
	client, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "message": "card expired"}`))
	}, 5*time.Second)

	_, err := client.Charge(context.Background(), decimal.RequireFromString("10.00"), testDetails())

	var payErr *apperrors.PaymentError
	if !errors.As(err, &payErr) || payErr.Reason != "card expired" {
		t.Fatalf("expected decline with message %q, got %v", "card expired", err)
	}
}

func TestGatewayCharge_Timeout(t *testing.T) {
	client, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"success": true, "data": {"transaction_id": "TX-LATE"}}`))
	}, 50*time.Millisecond)

	_, err := client.Charge(context.Background(), decimal.RequireFromString("10.00"), testDetails())

	var payErr *apperrors.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
	if payErr.Kind != apperrors.PaymentTimeout {
		t.Errorf("kind = %s, want timeout", payErr.Kind)
	}
}

func TestGatewayCharge_UndecodableBody(t *testing.T) {
	client, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>gateway error</html>`))
	}, 5*time.Second)

	_, err := client.Charge(context.Background(), decimal.RequireFromString("10.00"), testDetails())

	var payErr *apperrors.PaymentError
	if !errors.As(err, &payErr) || payErr.Kind != apperrors.PaymentMalformed {
		t.Fatalf("expected malformed PaymentError, got %v", err)
	}
}

func TestGatewayCharge_SuccessWithoutTransactionID(t *testing.T) {
	client, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {}}`))
	}, 5*time.Second)

	_, err := client.Charge(context.Background(), decimal.RequireFromString("10.00"), testDetails())

	var payErr *apperrors.PaymentError
	if !errors.As(err, &payErr) || payErr.Kind != apperrors.PaymentMalformed {
		t.Fatalf("expected malformed PaymentError, got %v", err)
	}
}
