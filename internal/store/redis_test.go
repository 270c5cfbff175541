package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"furniture-catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping redis integration test")
	}
	key := "furniture-catalog:test:" + NewID()
	s, err := OpenRedis(context.Background(), url, key)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.client.Del(context.Background(), key).Err()
		_ = s.Close()
	})
	return s
}

func TestRedisStore(t *testing.T) {
	exerciseStore(t, openTestRedis(t))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	s := openTestRedis(t)
	ctx := context.Background()
	require.NoError(t, s.client.Set(ctx, s.key, "not-json", 0).Err())

	_, err := s.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCorruptData))
}

func TestOpenRedis_BadURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "://nope", "k")
	assert.Error(t, err)
}
