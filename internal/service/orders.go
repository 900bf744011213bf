package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/models"
	"github.com/joansfix/shop-api/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// OrderService provides ownership-scoped read access to order history.
type OrderService struct {
	reader   repository.OrderReader
	cache    repository.OrderCache
	features config.FeatureFlags
	logger   *zap.Logger
}

// NewOrderService creates the order history reader.
func NewOrderService(
	reader repository.OrderReader,
	cache repository.OrderCache,
	features config.FeatureFlags,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		reader:   reader,
		cache:    cache,
		features: features,
		logger:   logger.Named("order-service"),
	}
}

// ListOrders returns page `page` (1-based) of the user's order history,
// newest first. The first page is served from cache when enabled; the cache
// is invalidated whenever a checkout commits, so a hit is never stale.
func (s *OrderService) ListOrders(ctx context.Context, userID int64, page, pageSize int) (*models.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	useCache := s.features.EnableOrderCaching && page == 1 && pageSize == defaultPageSize
	if useCache {
		if cached, err := s.cache.GetFirstPage(ctx, userID); err == nil && cached != nil {
			s.logger.Debug("order history served from cache", zap.Int64("user_id", userID))
			return cached, nil
		}
	}

	offset := (page - 1) * pageSize
	orders, total, err := s.reader.ListOrdersByUser(ctx, userID, pageSize, offset)
	if err != nil {
		s.logger.Error("failed to list orders",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	result := &models.OrderPage{Orders: orders, TotalItems: total}
	if useCache {
		if err := s.cache.SetFirstPage(ctx, userID, result); err != nil {
			s.logger.Error("failed to cache order history", zap.Error(err))
		}
	}
	return result, nil
}

// GetOrder returns a single order owned by userID, or ErrNotFound when it
// does not exist or belongs to someone else.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	return s.reader.GetOrder(ctx, orderID, userID)
}
