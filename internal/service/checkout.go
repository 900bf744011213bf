package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/events"
	"github.com/joansfix/shop-api/internal/metrics"
	"github.com/joansfix/shop-api/internal/models"
	"github.com/joansfix/shop-api/internal/repository"
)

// PaymentProcessor dispatches one payment attempt to the strategy registered
// for the given method label.
type PaymentProcessor interface {
	Process(ctx context.Context, method string, amount decimal.Decimal, details models.PaymentDetails) (string, error)
}

// Checkout phases, recorded in logs as the transaction advances.
const (
	phaseStarted       = "STARTED"
	phaseStockVerified = "STOCK_VERIFIED"
	phasePaid          = "PAID"
	phasePersisted     = "PERSISTED"
	phaseAborted       = "ABORTED"
)

// CheckoutService coordinates the checkout transaction: stock verification,
// the single external payment call, inventory decrement and order
// persistence, all inside one unit of work that commits or rolls back as a
// whole.
type CheckoutService struct {
	store     repository.CheckoutStore
	payments  PaymentProcessor
	cache     repository.OrderCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	features  config.FeatureFlags
	logger    *zap.Logger
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(
	store repository.CheckoutStore,
	payments PaymentProcessor,
	cache repository.OrderCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	features config.FeatureFlags,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		store:     store,
		payments:  payments,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		features:  features,
		logger:    logger.Named("checkout-service"),
	}
}

// Checkout runs one checkout for userID. Line items are processed in the
// order supplied by the caller; repeated product ids stay independent lines
// and are not merged. On any failure the whole unit of work rolls back and
// no order, line item, or stock change survives.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, req *models.CheckoutRequest) (*models.Order, error) {
	if err := validateCheckoutRequest(req); err != nil {
		s.metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeInvalidRequest).Inc()
		return nil, err
	}

	log := s.logger.With(
		zap.Int64("user_id", userID),
		zap.Int("item_count", len(req.Items)),
		zap.String("payment_method", req.PaymentMethod),
	)
	log.Info("checkout started", zap.String("phase", phaseStarted))

	var order *models.Order
	err := s.store.WithinCheckoutTx(ctx, func(tx repository.CheckoutTx) error {
		// Verify the entire order read-only before any mutation, so a
		// late item's failure cannot leave earlier items partially
		// decremented. Each product's price is read here once; the same
		// read feeds both the total and the captured unit prices.
		products := make([]*models.Product, len(req.Items))
		total := decimal.Zero
		for i, item := range req.Items {
			product, err := tx.GetProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < item.Quantity {
				return &apperrors.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}
			products[i] = product
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		log.Info("stock verified",
			zap.String("phase", phaseStockVerified),
			zap.String("total", total.StringFixed(2)),
		)

		// One payment call for the whole order. Nothing has been written
		// yet, so a failure here leaves no state to undo.
		start := time.Now()
		txRef, err := s.payments.Process(ctx, req.PaymentMethod, total, req.PaymentDetails)
		s.metrics.PaymentDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		log.Info("payment authorized",
			zap.String("phase", phasePaid),
			zap.String("transaction_reference", txRef),
		)

		for _, item := range req.Items {
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order = &models.Order{
			UserID:               userID,
			TotalAmount:          total,
			Status:               models.OrderStatusCompleted,
			PaymentMethod:        req.PaymentMethod,
			TransactionReference: txRef,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, len(req.Items))
		for i, item := range req.Items {
			items[i] = models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: products[i].Price,
			}
		}
		if err := tx.CreateOrderItems(ctx, order.ID, items); err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		log.Warn("checkout aborted",
			zap.String("phase", phaseAborted),
			zap.Error(err),
		)
		s.metrics.CheckoutTotal.WithLabelValues(outcomeFor(err)).Inc()
		return nil, err
	}

	log.Info("checkout persisted",
		zap.String("phase", phasePersisted),
		zap.Int64("order_id", order.ID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	s.metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	totalValue, _ := order.TotalAmount.Float64()
	s.metrics.OrderTotalValue.Observe(totalValue)

	// Post-commit side effects are best effort and never fail the checkout.
	if s.features.EnableOrderCaching {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Error("failed to invalidate order cache", zap.Error(err))
		}
	}
	if s.features.EnableOrderEvents {
		if err := s.publisher.PublishOrderCompleted(ctx, order); err != nil {
			log.Error("failed to publish order event",
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

func validateCheckoutRequest(req *models.CheckoutRequest) error {
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items", "the shopping cart cannot be empty")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return apperrors.NewValidationError("items", "quantity must be positive")
		}
	}
	if req.PaymentMethod == "" {
		return apperrors.NewValidationError("paymentMethod", "a payment method is required")
	}
	return nil
}

func outcomeFor(err error) string {
	var (
		notFound     *apperrors.ProductNotFoundError
		stock        *apperrors.InsufficientStockError
		payment      *apperrors.PaymentError
		validation   *apperrors.ValidationError
		persistError *apperrors.PersistenceError
	)
	switch {
	case errors.As(err, &notFound):
		return metrics.OutcomeProductNotFound
	case errors.As(err, &stock):
		return metrics.OutcomeInsufficientStock
	case errors.As(err, &payment):
		return metrics.OutcomePaymentFailed
	case errors.As(err, &validation):
		return metrics.OutcomeInvalidRequest
	case errors.As(err, &persistError):
		return metrics.OutcomePersistenceFailed
	default:
		return metrics.OutcomePersistenceFailed
	}
}
