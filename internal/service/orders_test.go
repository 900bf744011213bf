package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/models"
)

// memReader serves a fixed order list and records the pagination it was
// asked for.
type memReader struct {
	orders     []*models.Order
	lastLimit  int
	lastOffset int
	calls      int
}

func (r *memReader) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, int, error) {
	r.calls++
	r.lastLimit = limit
	r.lastOffset = offset

	end := offset + limit
	if offset > len(r.orders) {
		return nil, len(r.orders), nil
	}
	if end > len(r.orders) {
		end = len(r.orders)
	}
	return r.orders[offset:end], len(r.orders), nil
}

func (r *memReader) GetOrder(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	for _, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// memCache is a first-page cache backed by a map.
type memCache struct {
	pages map[int64]*models.OrderPage
	hits  int
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[int64]*models.OrderPage)}
}

func (c *memCache) GetFirstPage(ctx context.Context, userID int64) (*models.OrderPage, error) {
	page, ok := c.pages[userID]
	if !ok {
		return nil, nil
	}
	c.hits++
	return page, nil
}

func (c *memCache) SetFirstPage(ctx context.Context, userID int64, page *models.OrderPage) error {
	c.pages[userID] = page
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, userID int64) error {
	delete(c.pages, userID)
	return nil
}

func ordersFixture(n int) []*models.Order {
	orders := make([]*models.Order, n)
	for i := range orders {
		orders[i] = &models.Order{
			ID:          int64(i + 1),
			UserID:      1,
			TotalAmount: dec("10.00"),
			Status:      models.OrderStatusCompleted,
		}
	}
	return orders
}

func newTestOrderService(reader *memReader, cache *memCache, caching bool) *OrderService {
	return NewOrderService(reader, cache,
		config.FeatureFlags{EnableOrderCaching: caching}, zap.NewNop())
}

func TestListOrders_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 1, 10, 10, 0},
		{"second page", 2, 10, 10, 10},
		{"zero page clamps to first", 0, 10, 10, 0},
		{"negative page clamps to first", -3, 10, 10, 0},
		{"zero size uses default", 1, 0, 10, 0},
		{"oversized clamps to max", 1, 500, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &memReader{orders: ordersFixture(25)}
			svc := newTestOrderService(reader, newMemCache(), false)

			result, err := svc.ListOrders(context.Background(), 1, tt.page, tt.pageSize)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if reader.lastLimit != tt.wantLimit || reader.lastOffset != tt.wantOffset {
				t.Errorf("limit/offset = %d/%d, want %d/%d",
					reader.lastLimit, reader.lastOffset, tt.wantLimit, tt.wantOffset)
			}
			if result.TotalItems != 25 {
				t.Errorf("total = %d, want 25", result.TotalItems)
			}
		})
	}
}

func TestListOrders_FirstPageCached(t *testing.T) {
	reader := &memReader{orders: ordersFixture(3)}
	cache := newMemCache()
	svc := newTestOrderService(reader, cache, true)

	if _, err := svc.ListOrders(context.Background(), 1, 1, 10); err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	if _, err := svc.ListOrders(context.Background(), 1, 1, 10); err != nil {
		t.Fatalf("second list failed: %v", err)
	}

	if reader.calls != 1 {
		t.Errorf("reader hit %d times, want 1 (second call from cache)", reader.calls)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
}

func TestListOrders_NonDefaultPageSkipsCache(t *testing.T) {
	reader := &memReader{orders: ordersFixture(30)}
	cache := newMemCache()
	svc := newTestOrderService(reader, cache, true)

	if _, err := svc.ListOrders(context.Background(), 1, 2, 10); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := svc.ListOrders(context.Background(), 1, 1, 25); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(cache.pages) != 0 {
		t.Errorf("non-first-page results were cached")
	}
	if reader.calls != 2 {
		t.Errorf("reader hit %d times, want 2", reader.calls)
	}
}

func TestGetOrder_OwnershipScoped(t *testing.T) {
	reader := &memReader{orders: []*models.Order{
		{ID: 5, UserID: 1, TotalAmount: dec("10.00")},
	}}
	svc := newTestOrderService(reader, newMemCache(), false)

	order, err := svc.GetOrder(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if order.ID != 5 {
		t.Errorf("order id = %d, want 5", order.ID)
	}

	// Another user asking for the same id sees a not-found.
	if _, err := svc.GetOrder(context.Background(), 5, 2); err == nil {
		t.Errorf("expected a not-found error for a foreign user")
	}
}
