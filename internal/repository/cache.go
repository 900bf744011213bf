package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/models"
)

const (
	userOrdersPrefix = "user_orders:"
	defaultCacheTTL  = 5 * time.Minute
)

// RedisOrderCache caches the first page of each user's order history. The
// cache is read-through on the history endpoint and invalidated whenever a
// checkout commits a new order for the user.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisOrderCache creates a Redis-backed order history cache.
func NewRedisOrderCache(cfg config.RedisConfig, logger *zap.Logger) *RedisOrderCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("order-cache"),
	}
}

// GetFirstPage returns the cached first page for a user, or nil on a miss.
func (c *RedisOrderCache) GetFirstPage(ctx context.Context, userID int64) (*models.OrderPage, error) {
	key := userOrdersKey(userID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss", zap.Int64("user_id", userID))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("cache get failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	var page models.OrderPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}

	c.logger.Debug("cache hit", zap.Int64("user_id", userID))
	return &page, nil
}

// SetFirstPage caches the first page of a user's history.
func (c *RedisOrderCache) SetFirstPage(ctx context.Context, userID int64, page *models.OrderPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, userOrdersKey(userID), data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set failed", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// Invalidate drops the cached page for a user.
func (c *RedisOrderCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, userOrdersKey(userID)).Err()
}

func userOrdersKey(userID int64) string {
	return userOrdersPrefix + strconv.FormatInt(userID, 10)
}
