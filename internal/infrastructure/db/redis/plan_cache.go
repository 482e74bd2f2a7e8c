package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// PlanCache stores generated action plans as JSON.
// Key format: plan:v1:<goal_id>
type PlanCache struct {
	client stringStore
}

// stringStore is the subset of redis.Cmdable the cache needs.
type stringStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// NewPlanCache creates a PlanCache wrapping the given Redis client.
func NewPlanCache(client stringStore) *PlanCache {
	return &PlanCache{client: client}
}

var _ ports.PlanCache = (*PlanCache)(nil)

// Get returns the cached plan for goalID. Expiry is enforced by Redis.
func (c *PlanCache) Get(ctx context.Context, goalID string) ([]domain.ActionStep, bool, error) {
	raw, err := c.client.Get(ctx, c.key(goalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("plan cache get: %w", err)
	}

	var steps []domain.ActionStep
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, false, fmt.Errorf("plan cache decode: %w", err)
	}
	return steps, true, nil
}

// Set stores steps for goalID, replacing any previous entry.
func (c *PlanCache) Set(ctx context.Context, goalID string, steps []domain.ActionStep, ttl time.Duration) error {
	raw, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("plan cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(goalID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("plan cache set: %w", err)
	}
	return nil
}

func (c *PlanCache) key(goalID string) string {
	return "plan:v1:" + goalID
}
