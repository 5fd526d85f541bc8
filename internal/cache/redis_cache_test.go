package cache

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedQuiz struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewRedisCache(client, logger), mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "quiz:def:1", cachedQuiz{ID: 1, Title: "Safety basics"}, time.Minute))
	assert.True(t, mr.Exists("quiz:def:1"))

	var got cachedQuiz
	require.NoError(t, c.Get(ctx, "quiz:def:1", &got))
	assert.Equal(t, cachedQuiz{ID: 1, Title: "Safety basics"}, got)
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got cachedQuiz
	err := c.Get(context.Background(), "quiz:def:404", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "quiz:def:2", cachedQuiz{ID: 2}, time.Minute))
	require.NoError(t, c.Delete(ctx, "quiz:def:2"))
	assert.False(t, mr.Exists("quiz:def:2"))
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "quiz:def:3", cachedQuiz{ID: 3}, time.Second))
	mr.FastForward(2 * time.Second)

	var got cachedQuiz
	assert.ErrorIs(t, c.Get(ctx, "quiz:def:3", &got), ErrCacheMiss)
}
