package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ignite/open-tracker/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedisStore(client)
}

func TestRedisStore_RecordOpenCreatesWithDefaults(t *testing.T) {
	s := setupTestRedis(t)
	ctx := context.Background()

	evt, err := s.RecordOpen(ctx, "abc123", "203.0.113.5", "Mozilla/5.0")
	require.NoError(t, err)

	assert.Equal(t, "abc123", evt.ID)
	assert.Equal(t, domain.UnknownEmail, evt.Email)
	assert.True(t, evt.Opened)
	require.NotNil(t, evt.OpenTime)
	assert.Equal(t, "203.0.113.5", evt.IPAddress)
	assert.Equal(t, "Mozilla/5.0", evt.UserAgent)
}

func TestRedisStore_RecordOpenConverges(t *testing.T) {
	s := setupTestRedis(t)
	ctx := context.Background()

	first, err := s.RecordOpen(ctx, "id-1", "10.0.0.1", "ua-1")
	require.NoError(t, err)

	evt, err := s.RecordOpen(ctx, "id-1", "10.0.0.2", "ua-2")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2", evt.IPAddress)
	assert.Equal(t, "ua-2", evt.UserAgent)
	// sent_time is fixed at first sight of the id
	assert.Equal(t, first.SentTime, evt.SentTime)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	s := setupTestRedis(t)

	_, err := s.Get(context.Background(), "never-seen")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_RegisterThenOpen(t *testing.T) {
	s := setupTestRedis(t)
	ctx := context.Background()

	evt, err := s.Register(ctx, "pre-1", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, evt.Opened)
	assert.Nil(t, evt.OpenTime)

	opened, err := s.RecordOpen(ctx, "pre-1", "198.51.100.7", "Thunderbird")
	require.NoError(t, err)
	assert.True(t, opened.Opened)
	assert.Equal(t, "alice@example.com", opened.Email)
	assert.Equal(t, evt.SentTime, opened.SentTime)
}

func TestRedisStore_GetAllOrdering(t *testing.T) {
	s := setupTestRedis(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := s.RecordOpen(ctx, id, "10.0.0.1", "ua")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t3", all[0].ID)
	assert.Equal(t, "t2", all[1].ID)
	assert.Equal(t, "t1", all[2].ID)
}
