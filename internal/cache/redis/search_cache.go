package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/pkg/logger"
)

// SearchCache stores product search results. Keys come from
// utils.CacheKey("search", ...) and are used as-is.
type SearchCache struct {
	c   *Client
	ttl time.Duration
}

func NewSearchCache(c *Client, ttl time.Duration) *SearchCache {
	return &SearchCache{c: c, ttl: ttl}
}

func (s *SearchCache) GetProducts(ctx context.Context, key string) ([]models.Product, bool, error) {
	data, err := s.c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get search cache: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal products: %w", err)
	}

	logger.Debug("Search cache hit", zap.String("key", key))
	return products, true, nil
}

func (s *SearchCache) SetProducts(ctx context.Context, key string, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	if err := s.c.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set search cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached search, e.g. after the catalog changes.
func (s *SearchCache) Invalidate(ctx context.Context) error {
	n, err := s.c.deleteByPattern(ctx, "search:*")
	if err != nil {
		return err
	}

	logger.Info("Search cache invalidated", zap.Int("keys", n))
	return nil
}
