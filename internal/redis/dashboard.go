package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// DashboardCache keeps short-lived dashboard snapshots, one per admin scope.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{client: client, ttl: ttl}
}

func dashboardKey(adminID int) string {
	return fmt.Sprintf("dashboard:admin:%d", adminID)
}

// GetDashboard reports a miss on any redis or decode failure.
func (c *DashboardCache) GetDashboard(ctx context.Context, adminID int) (model.Dashboard, bool) {
	var d model.Dashboard

	raw, err := c.client.Get(ctx, dashboardKey(adminID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return d, false
	}
	if err != nil {
		log.Warn().Err(err).Int("admin_id", adminID).Msg("dashboard cache read failed")
		return d, false
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Warn().Err(err).Int("admin_id", adminID).Msg("dropping undecodable dashboard cache entry")
		return d, false
	}
	return d, true
}

func (c *DashboardCache) SetDashboard(ctx context.Context, adminID int, d model.Dashboard) {
	raw, err := json.Marshal(d)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode dashboard for cache")
		return
	}
	if err := c.client.Set(ctx, dashboardKey(adminID), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Int("admin_id", adminID).Msg("dashboard cache write failed")
	}
}
