package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// KPICache stores computed KPI blocks for a short TTL so repeated dashboard
// refreshes with the same filter do not re-run the aggregate queries. A cache
// failure is never fatal: callers fall back to recomputation.
type KPICache interface {
	Get(ctx context.Context, propertyID string, from, to time.Time) (*models.KPIData, error)
	Set(ctx context.Context, propertyID string, from, to time.Time, data models.KPIData, ttl time.Duration) error
}

type kpiCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewKPICache wires a Redis-backed KPI cache.
func NewKPICache(r *Redis) KPICache {
	return &kpiCache{client: r.Client(), logger: r.logger}
}

func kpiKey(propertyID string, from, to time.Time) string {
	return fmt.Sprintf("kpi:%s:%d:%d", propertyID, from.Unix(), to.Unix())
}

// Get returns the cached KPI block, or nil on a miss.
func (c *kpiCache) Get(ctx context.Context, propertyID string, from, to time.Time) (*models.KPIData, error) {
	key := kpiKey(propertyID, from, to)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		c.logger.Error("failed to get kpi from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	var data models.KPIData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("discard undecodable kpi cache entry", zap.String("key", key), zap.Error(err))
		return nil, nil
	}

	c.logger.Debug("kpi cache hit", zap.String("key", key))
	return &data, nil
}

// Set stores the KPI block under the filter key for the given TTL.
func (c *kpiCache) Set(ctx context.Context, propertyID string, from, to time.Time, data models.KPIData, ttl time.Duration) error {
	key := kpiKey(propertyID, from, to)

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal kpi data: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Error("failed to set kpi cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	c.logger.Debug("kpi cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
