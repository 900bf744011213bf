package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/models"
)

// GatewayClient talks to the external payment gateway. It issues exactly one
// request per Charge call and never retries; whether an attempt that timed
// out actually settled on the gateway side is unknown, and no idempotency
// key exists to detect a duplicate charge.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGatewayClient creates a gateway client. The configured timeout bounds
// the single outbound call.
func NewGatewayClient(cfg config.GatewayConfig, logger *zap.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("payment-gateway"),
	}
}

// chargeRequest is the gateway's wire format. Amount travels as a string to
// sidestep float precision on the gateway side.
type chargeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	CardNumber  string `json:"card-number"`
	CVV         string `json:"cvv"`
	ExpMonth    string `json:"expiration-month"`
	ExpYear     string `json:"expiration-year"`
	FullName    string `json:"full-name"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
}

type chargeResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Data    struct {
		TransactionID string `json:"transaction_id"`
	} `json:"data"`
}

// Charge submits one payment to the gateway and returns the gateway's opaque
// transaction identifier. Failures map onto the payment error taxonomy:
// timeout, declined (with the gateway's reason when present), or malformed.
func (c *GatewayClient) Charge(ctx context.Context, amount decimal.Decimal, details models.PaymentDetails) (string, error) {
	currency := details.Currency
	if currency == "" {
		currency = "USD"
	}

	body := chargeRequest{
		Amount:      amount.StringFixed(2),
		Currency:    currency,
		CardNumber:  strings.ReplaceAll(details.CardNumber, " ", ""),
		CVV:         details.CVV,
		ExpMonth:    details.ExpMonth,
		ExpYear:     details.ExpYear,
		FullName:    details.CardHolder,
		Description: "Purchase at Joan's Fix parts shop",
		Reference:   "ref-" + uuid.NewString(),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", &apperrors.PaymentError{Kind: apperrors.PaymentMalformed, Reason: err.Error()}
	}

	// Card data stays out of the logs; only the amount and reference are safe.
	c.logger.Info("charging payment gateway",
		zap.String("amount", body.Amount),
		zap.String("currency", currency),
		zap.String("reference", body.Reference),
	)

	url := c.baseURL + "/payments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &apperrors.PaymentError{Kind: apperrors.PaymentMalformed, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("payment gateway timed out", zap.String("reference", body.Reference))
			return "", &apperrors.PaymentError{
				Kind:   apperrors.PaymentTimeout,
				Reason: "the payment gateway took too long to respond",
			}
		}
		c.logger.Error("payment gateway unreachable", zap.Error(err))
		return "", &apperrors.PaymentError{Kind: apperrors.PaymentDeclined, Reason: err.Error()}
	}
	defer resp.Body.Close()

	var result chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &apperrors.PaymentError{
			Kind:   apperrors.PaymentMalformed,
			Reason: fmt.Sprintf("status %d with undecodable body", resp.StatusCode),
		}
	}

	if resp.StatusCode >= 300 || !result.Success {
		reason := declineReason(&result)
		c.logger.Warn("payment declined",
			zap.Int("status_code", resp.StatusCode),
			zap.String("reason", reason),
		)
		return "", &apperrors.PaymentError{Kind: apperrors.PaymentDeclined, Reason: reason}
	}

	if result.Data.TransactionID == "" {
		return "", &apperrors.PaymentError{
			Kind:   apperrors.PaymentMalformed,
			Reason: "success response without a transaction id",
		}
	}

	c.logger.Info("payment approved",
		zap.String("transaction_id", result.Data.TransactionID),
		zap.String("reference", body.Reference),
	)
	return result.Data.TransactionID, nil
}

// declineReason extracts the gateway's human-readable reason, preferring the
// per-field errors map over the top-level message.
func declineReason(resp *chargeResponse) string {
	if len(resp.Errors) > 0 {
		keys := make([]string, 0, len(resp.Errors))
		for k := range resp.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+resp.Errors[k])
		}
		return strings.Join(parts, ", ")
	}
	if resp.Message != "" {
		return resp.Message
	}
	return "payment rejected by the gateway"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
