// Package payment adapts per-method payment strategies behind a single
// Process call. Strategies are registered on an explicitly constructed
// Registry at startup; there is no package-level registry.
package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/models"
)

// Strategy executes one payment attempt for a concrete payment method and
// returns the gateway's transaction identifier.
type Strategy interface {
	Execute(ctx context.Context, amount decimal.Decimal, details models.PaymentDetails) (string, error)
}

// Registry maps payment method labels to strategies.
type Registry struct {
	strategies map[string]Strategy
	logger     *zap.Logger
}

// NewRegistry creates an empty strategy registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
		logger:     logger.Named("payment-registry"),
	}
}

// Register binds a method label to a strategy. Called during startup wiring,
// before the registry is shared; not safe for concurrent mutation afterwards.
func (r *Registry) Register(method string, s Strategy) {
	r.strategies[method] = s
}

// Process dispatches to the strategy registered for method. An unregistered
// label fails immediately with an unsupported-method error; no network call
// is attempted.
func (r *Registry) Process(ctx context.Context, method string, amount decimal.Decimal, details models.PaymentDetails) (string, error) {
	strategy, ok := r.strategies[method]
	if !ok {
		r.logger.Warn("unsupported payment method", zap.String("method", method))
		return "", &apperrors.PaymentError{
			Kind:   apperrors.PaymentUnsupported,
			Reason: fmt.Sprintf("payment method %q is not supported", method),
		}
	}

	r.logger.Debug("dispatching payment", zap.String("method", method))
	return strategy.Execute(ctx, amount, details)
}

// CreditCardStrategy charges a credit card through the external gateway.
type CreditCardStrategy struct {
	gateway *GatewayClient
}

// NewCreditCardStrategy creates the credit card strategy.
func NewCreditCardStrategy(gateway *GatewayClient) *CreditCardStrategy {
	return &CreditCardStrategy{gateway: gateway}
}

// Execute validates the minimum card data and performs the single gateway
// call. Validation failures never reach the network.
func (s *CreditCardStrategy) Execute(ctx context.Context, amount decimal.Decimal, details models.PaymentDetails) (string, error) {
	if details.CardNumber == "" || details.CardHolder == "" {
		return "", apperrors.NewValidationError("paymentDetails",
			"card number and cardholder name are required")
	}
	return s.gateway.Charge(ctx, amount, details)
}
