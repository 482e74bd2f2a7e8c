package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

type memStore struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memStore) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestPlanCache_RoundTrip(t *testing.T) {
	store := newMemStore()
	cache := NewPlanCache(store)
	ctx := context.Background()
	steps := []domain.ActionStep{
		{Description: "Post before/after photos", DueDate: "2024-08-01"},
		{Description: "Call lapsed customers", Notes: "Start with fleet accounts"},
	}

	require.NoError(t, cache.Set(ctx, "g1", steps, 24*time.Hour))
	assert.Equal(t, 24*time.Hour, store.ttl["plan:v1:g1"])

	got, ok, err := cache.Get(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, steps, got)
}

func TestPlanCache_Miss(t *testing.T) {
	cache := NewPlanCache(newMemStore())

	got, ok, err := cache.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestPlanCache_Errors(t *testing.T) {
	store := newMemStore()
	cache := NewPlanCache(store)
	ctx := context.Background()

	store.data["plan:v1:bad"] = "{not json"
	_, _, err := cache.Get(ctx, "bad")
	assert.Error(t, err)

	store.err = errors.New("connection refused")
	_, ok, err := cache.Get(ctx, "g1")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, cache.Set(ctx, "g1", nil, time.Hour))
}
