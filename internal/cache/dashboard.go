package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tradelog/api/internal/service"
)

const dashboardTTL = 60 * time.Second

// DashboardCache stores computed dashboard payloads in redis, cache-aside
// with a short TTL. Trade mutations invalidate eagerly; the TTL only
// bounds staleness if an invalidation is lost.
type DashboardCache struct {
	client *redis.Client
}

func NewDashboardCache(client *redis.Client) *DashboardCache {
	return &DashboardCache{client: client}
}

func dashboardKey(userID string) string {
	return "dashboard:" + userID
}

func (c *DashboardCache) Get(ctx context.Context, userID string) (service.DashboardData, bool, error) {
	raw, err := c.client.Get(ctx, dashboardKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return service.DashboardData{}, false, nil
		}
		return service.DashboardData{}, false, fmt.Errorf("dashboard cache get: %w", err)
	}

	var data service.DashboardData
	if err := json.Unmarshal(raw, &data); err != nil {
		// A stale or incompatible payload is treated as a miss.
		return service.DashboardData{}, false, nil
	}
	return data, true, nil
}

func (c *DashboardCache) Set(ctx context.Context, userID string, data service.DashboardData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("dashboard cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(userID), raw, dashboardTTL).Err(); err != nil {
		return fmt.Errorf("dashboard cache set: %w", err)
	}
	return nil
}

func (c *DashboardCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, dashboardKey(userID)).Err(); err != nil {
		return fmt.Errorf("dashboard cache del: %w", err)
	}
	return nil
}
